package models

import "strings"

// Mode is the closed set of leg modes understood by the core.
// Vehicle tokens the service reports that are not listed here map to ModeOther.
type Mode string

const (
	ModeWalking        Mode = "WALKING"
	ModeRail           Mode = "RAIL"
	ModeMetroRail      Mode = "METRO_RAIL"
	ModeSubway         Mode = "SUBWAY"
	ModeTram           Mode = "TRAM"
	ModeMonorail       Mode = "MONORAIL"
	ModeHeavyRail      Mode = "HEAVY_RAIL"
	ModeCommuterTrain  Mode = "COMMUTER_TRAIN"
	ModeHighSpeedTrain Mode = "HIGH_SPEED_TRAIN"
	ModeBus            Mode = "BUS"
	ModeIntercityBus   Mode = "INTERCITY_BUS"
	ModeTrolleybus     Mode = "TROLLEYBUS"
	ModeShareTaxi      Mode = "SHARE_TAXI"
	ModeFerry          Mode = "FERRY"
	ModeCableCar       Mode = "CABLE_CAR"
	ModeGondolaLift    Mode = "GONDOLA_LIFT"
	ModeFunicular      Mode = "FUNICULAR"
	ModeOther          Mode = "OTHER"
)

var knownModes = map[Mode]struct{}{
	ModeWalking: {}, ModeRail: {}, ModeMetroRail: {}, ModeSubway: {}, ModeTram: {},
	ModeMonorail: {}, ModeHeavyRail: {}, ModeCommuterTrain: {}, ModeHighSpeedTrain: {},
	ModeBus: {}, ModeIntercityBus: {}, ModeTrolleybus: {}, ModeShareTaxi: {}, ModeFerry: {},
	ModeCableCar: {}, ModeGondolaLift: {}, ModeFunicular: {}, ModeOther: {},
}

// ParseMode maps a raw vehicle or travel-mode token onto Mode
func ParseMode(token string) Mode {
	m := Mode(strings.ToUpper(strings.TrimSpace(token)))
	if _, ok := knownModes[m]; ok {
		return m
	}
	return ModeOther
}

func (m Mode) IsWalking() bool {
	return m == ModeWalking
}
