package types

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rangeJSON holds durations in time.Duration's String form.
type rangeJSON struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

func newRangeJSON(min, max time.Duration) rangeJSON {
	return rangeJSON{Min: min.String(), Max: max.String()}
}

func (c ConnectionInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min     string `json:"min"`
		Max     string `json:"max"`
		Latency uint16 `json:"latency"`
		Timeout string `json:"timeout"`
	}{c.min.String(), c.max.String(), c.latency, c.timeout.String()})
}

func (l ExpectedConnectionLength) MarshalJSON() ([]byte, error) {
	return json.Marshal(newRangeJSON(l.min, l.max))
}

func (i AdvertisingInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(newRangeJSON(i.min, i.max))
}

func (i ExtendedAdvertisingInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(newRangeJSON(i.min, i.max))
}
