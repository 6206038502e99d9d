package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	chunks int
	runs   int
	err    error
}

func (r *recordSink) RecordChunk(ChunkEvent) error {
	r.chunks++
	return r.err
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	return r.err
}

func TestMultiSinkForwards(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, nil, s2)
	assert.Len(t, m.Sinks, 2)
	assert.NoError(t, m.RecordChunk(ChunkEvent{Persons: 3}))
	assert.NoError(t, m.RecordRun(RunEvent{Chunks: 1}))
	assert.Equal(t, 1, s1.chunks)
	assert.Equal(t, 1, s2.runs)
}

func TestMultiSinkKeepsGoingOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordSink{err: boom}
	ok := &recordSink{}
	m := NewMultiSink(failing, ok)
	assert.ErrorIs(t, m.RecordRun(RunEvent{}), boom)
	assert.Equal(t, 1, ok.runs)
}

type closingSink struct {
	NopSink
	closed bool
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestMultiSinkClose(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(&recordSink{}, c)
	assert.NoError(t, m.Close())
	assert.True(t, c.closed)
}
