package feed

import (
	"encoding/json"
	"fmt"
)

// maxStationSlots is the number of numbered StationN properties a train
// feature can carry.
const maxStationSlots = 40

// TrainFeature is one train in the trains feed. Properties is kept raw
// because besides the typed fields it carries up to 40 numbered StationN
// slots, each a JSON document embedded as a string.
type TrainFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// TrainProperties are the typed train-level fields of a feature. Numeric
// fields arrive as strings and several can be JSON null; null is simply left
// at the zero value.
type TrainProperties struct {
	ObjectID   int     `json:"OBJECTID"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	TrainNum   string  `json:"TrainNum"`
	RouteName  string  `json:"RouteName"`
	Heading    string  `json:"Heading"`
	EventCode  string  `json:"EventCode"`
	OrigCode   string  `json:"OrigCode"`
	DestCode   string  `json:"DestCode"`
	TrainState string  `json:"TrainState"`
	Velocity   string  `json:"Velocity"`
	StatusMsg  string  `json:"StatusMsg"`
	OrigSchDep string  `json:"OrigSchDep"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	LastValTS  string  `json:"LastValTS"`
}

// RawStation is the per-station timing record embedded in a StationN slot.
// Timing fields are pointers: absence versus empty string is what the status
// classification branches on.
type RawStation struct {
	Code     string  `json:"code"`
	TZ       string  `json:"tz"`
	Bus      bool    `json:"bus"`
	SchArr   *string `json:"scharr"`
	SchDep   *string `json:"schdep"`
	SchCmnt  string  `json:"schcmnt"`
	AutoArr  bool    `json:"autoarr"`
	AutoDep  bool    `json:"autodep"`
	EstArr   *string `json:"estarr"`
	EstDep   *string `json:"estdep"`
	PostArr  *string `json:"postarr"`
	PostDep  *string `json:"postdep"`
	PostCmnt *string `json:"postcmnt"`
}

// Props decodes the typed train-level fields.
func (f TrainFeature) Props() (TrainProperties, error) {
	var p TrainProperties
	if err := json.Unmarshal(f.Properties, &p); err != nil {
		return TrainProperties{}, fmt.Errorf("train properties: %w", err)
	}
	return p, nil
}

// StationSlots returns the embedded station payloads in slot order. Absent
// slots are skipped; the payloads are returned undecoded so a malformed slot
// can be skipped by the caller without losing the rest of the train.
func (f TrainFeature) StationSlots() []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(f.Properties, &fields); err != nil {
		return nil
	}

	slots := make([]string, 0, maxStationSlots)
	for i := 1; i <= maxStationSlots; i++ {
		raw, ok := fields[fmt.Sprintf("Station%d", i)]
		if !ok {
			continue
		}
		var payload string
		if err := json.Unmarshal(raw, &payload); err != nil || payload == "" {
			continue
		}
		slots = append(slots, payload)
	}
	return slots
}

type trainsDocument struct {
	Features []TrainFeature `json:"features"`
}

// ParseTrains decodes a decrypted trains feed document.
func ParseTrains(doc []byte) ([]TrainFeature, error) {
	var parsed trainsDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("trains document: %w", err)
	}
	return parsed.Features, nil
}

// StationFeature is one station in the stations feed.
type StationFeature struct {
	Properties StationProperties `json:"properties"`
}

type StationProperties struct {
	Code     string  `json:"Code"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Address1 string  `json:"Address1"`
	Address2 string  `json:"Address2"`
	City     string  `json:"City"`
	State    string  `json:"State"`
	Zip      string  `json:"Zipcode"`
}

type stationsDocument struct {
	StationsDataResponse struct {
		Features []StationFeature `json:"features"`
	} `json:"StationsDataResponse"`
}

// ParseStations decodes a decrypted stations feed document.
func ParseStations(doc []byte) ([]StationFeature, error) {
	var parsed stationsDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("stations document: %w", err)
	}
	return parsed.StationsDataResponse.Features, nil
}
