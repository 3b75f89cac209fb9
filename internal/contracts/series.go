package contracts

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV bar
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries is the daily history for one symbol, oldest bar first
// 日期嚴格遞增,缺交易日是正常的
type PriceSeries struct {
	Code string
	Bars []Bar
}

// Len returns the number of bars
func (p *PriceSeries) Len() int {
	return len(p.Bars)
}

// Last returns the most recent bar; ok is false for an empty series
func (p *PriceSeries) Last() (Bar, bool) {
	if len(p.Bars) == 0 {
		return Bar{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}

// Validate checks ordering invariants: strictly increasing dates, no duplicates
func (p *PriceSeries) Validate() error {
	for i := 1; i < len(p.Bars); i++ {
		prev, cur := p.Bars[i-1].Date, p.Bars[i].Date
		if !cur.After(prev) {
			return fmt.Errorf("series %s: bar %d date %s is not after %s",
				p.Code, i, cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
	}
	return nil
}

// TrailingCloses returns the last n closing prices, oldest first
// Panics are avoided: a short series returns everything it has
func (p *PriceSeries) TrailingCloses(n int) []float64 {
	start := len(p.Bars) - n
	if start < 0 {
		start = 0
	}
	closes := make([]float64, 0, len(p.Bars)-start)
	for _, bar := range p.Bars[start:] {
		closes = append(closes, bar.Close)
	}
	return closes
}
