// Package cakeday computes the cake day calendar for a set of people.
//
// Each person resolves to a candidate date: the first working day after
// their day off, which is their birthday or the next working day when the
// birthday is not one. Candidates sharing a date are grouped, then two rules
// are applied repeatedly until the set stops changing:
//
//   - cakes on two consecutive working days are merged into one large cake
//     on the later day;
//   - the working day after a cake day stays cake free, so a cake falling on
//     it is postponed to the next working day after its own date.
//
// Each rule can break the other, so Engine iterates to a fixed point with a
// bounded number of rounds and reports whether it converged. Scheduler
// bounds how many people the Engine handles at once and reconciles the
// sub-batch results.
package cakeday
