package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString absorbs upstream fields that arrive as string, int or
// float depending on the provider's mood.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	var s string
	var i int64
	var f float64

	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexibleString(s)
		return nil
	}

	if err := json.Unmarshal(data, &i); err == nil {
		*fs = FlexibleString(fmt.Sprintf("%d", i))
		return nil
	}

	if err := json.Unmarshal(data, &f); err == nil {
		*fs = FlexibleString(fmt.Sprintf("%g", f))
		return nil
	}

	return fmt.Errorf("unable to parse %s as FlexibleString", string(data))
}

func (fs FlexibleString) ToInt64() (int64, error) {
	return strconv.ParseInt(string(fs), 10, 64)
}

func (fs FlexibleString) ToFloat64() (float64, error) {
	return strconv.ParseFloat(string(fs), 64)
}

func (fs FlexibleString) String() string {
	return string(fs)
}
