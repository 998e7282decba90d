package types

// Unit identifies the temperature unit a dashboard render works in.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// Symbol returns the display symbol for the unit.
func (u Unit) Symbol() string {
	if u == UnitFahrenheit {
		return "°F"
	}
	return "°C"
}

// Valid reports whether the unit is one of the supported values.
func (u Unit) Valid() bool {
	return u == UnitCelsius || u == UnitFahrenheit
}

// AlertKind identifies the category of a forecast alert.
type AlertKind string

const (
	AlertKindWind AlertKind = "wind"
	AlertKindHeat AlertKind = "heat"
)

// Environment identifies the deployment environment.
type Environment string

const (
	EnvLocal   Environment = "local"
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)
