package amtraker

// StationStatus is the resolved state of a train relative to one of its stops.
type StationStatus string

const (
	StatusEnroute  StationStatus = "Enroute"
	StatusStation  StationStatus = "Station"
	StatusDeparted StationStatus = "Departed"
	StatusUnknown  StationStatus = "Unknown"
)

// Station is one stop on a train's route after normalization. All times are
// ISO-8601 with the station's UTC offset. When only one of arr/dep could be
// computed the other mirrors it, so consumers never have to branch on a
// missing side unless the status is Unknown.
type Station struct {
	Name    string        `json:"name"`
	Code    string        `json:"code"`
	TZ      string        `json:"tz"`
	Bus     bool          `json:"bus"`
	SchArr  string        `json:"schArr"`
	SchDep  string        `json:"schDep"`
	Arr     string        `json:"arr"`
	Dep     string        `json:"dep"`
	ArrCmnt string        `json:"arrCmnt"`
	DepCmnt string        `json:"depCmnt"`
	Status  StationStatus `json:"status"`
}

// Train is a single calendar run of a numbered train. TrainID disambiguates
// multiple runs of the same number ("{num}-{dayOfMonth}"). Records are
// immutable once committed to the store; a refresh replaces them wholesale.
type Train struct {
	RouteName             string    `json:"routeName"`
	TrainNum              int       `json:"trainNum"`
	TrainID               string    `json:"trainID"`
	Lat                   float64   `json:"lat"`
	Lon                   float64   `json:"lon"`
	Stations              []Station `json:"stations"`
	Heading               string    `json:"heading"`
	EventCode             string    `json:"eventCode"`
	OrigCode              string    `json:"origCode"`
	OriginTZ              string    `json:"originTZ"`
	DestCode              string    `json:"destCode"`
	DestTZ                string    `json:"destTZ"`
	TrainState            string    `json:"trainState"`
	Velocity              float64   `json:"velocity"`
	StatusMsg             string    `json:"statusMsg"`
	CurrentStationComment string    `json:"currentStationCmnt"`
	CreatedAt             string    `json:"createdAt"`
	UpdatedAt             string    `json:"updatedAt"`
	LastValTS             string    `json:"lastValTS"`
	ObjectID              int       `json:"objectID"`
}

// StationMeta is the reference record for a station, independent of any one
// train. Trains is the derived back-reference list of train IDs currently or
// previously serving the station; it grows append-only within a process
// lifetime.
type StationMeta struct {
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	TZ       string   `json:"tz"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Address1 string   `json:"address1"`
	Address2 string   `json:"address2"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Zip      string   `json:"zip"`
	Trains   []string `json:"trains"`
}
