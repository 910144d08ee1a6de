package event

import (
	"flow_go/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvOptionTrade Type = iota + 1
	EvSystemHalt
)

// Event is the interface for all engine events.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// OptionTradeEvent is one inbound options trade tick. Ephemeral: consumed
// once by the engine and returned to the pool, never stored verbatim.
type OptionTradeEvent struct {
	BaseEvent
	Symbol      string            `json:"symbol"` // OCC contract symbol
	PriceMicros quant.PriceMicros `json:"price"`
	Size        int64             `json:"size"`
	Exchange    string            `json:"exchange"`
}

func (e OptionTradeEvent) GetType() Type { return EvOptionTrade }
