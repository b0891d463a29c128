package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_NowAndAdvance(t *testing.T) {
	start := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
	c := NewFake(start)

	assert.Equal(t, start, c.Now())

	c.Advance(2 * time.Minute)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 1, 0, 0, time.UTC), c.Now())
}

func TestFake_TickerFiresOnlyWhenDue(t *testing.T) {
	c := NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tk := c.NewTicker(30 * time.Second)

	c.Advance(10 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(20 * time.Second)
	select {
	case <-tk.C():
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestFake_StoppedTickerIsSilent(t *testing.T) {
	c := NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tk := c.NewTicker(time.Second)
	tk.Stop()

	c.Advance(5 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFake_NewTickerPanicsOnNonPositive(t *testing.T) {
	c := NewFake(time.Now())
	assert.Panics(t, func() { c.NewTicker(0) })
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	assert.False(t, got.Before(before))
}
