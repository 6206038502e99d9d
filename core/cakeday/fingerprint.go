package cakeday

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kilianp07/cakeday/core/model"
)

// fingerprint digests a cake day set independently of entry and attendee
// order. Attendees are treated as a multiset.
func fingerprint(days []model.CakeDay) uint64 {
	entries := make([]string, len(days))
	var b strings.Builder
	for i, d := range days {
		names := slices.Clone(d.Attendees)
		slices.Sort(names)
		b.Reset()
		b.WriteString(d.Date.Format(model.DateLayout))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(d.SmallCakes))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(d.LargeCakes))
		for _, n := range names {
			b.WriteByte(0x1f)
			b.WriteString(n)
		}
		entries[i] = b.String()
	}
	slices.Sort(entries)
	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e)
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}
