package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingCloser struct {
	closed int
}

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestCloseLogClosesOnce(t *testing.T) {
	c := &countingCloser{}
	logCloser = c
	t.Cleanup(func() { logCloser = nil })

	closeLog()
	closeLog()

	assert.Equal(t, 1, c.closed)
	assert.Nil(t, logCloser)
}

func TestCloseLogWithoutLogFile(t *testing.T) {
	logCloser = nil
	assert.NotPanics(t, closeLog)
}
