package core

// TravelerProfile holds the traveler attributes inferred from a conversation.
// Field tags drive both the JSON schema handed to the completion service and
// the mapstructure decoding of its answer.
type TravelerProfile struct {
	Destination    string   `json:"destination" mapstructure:"destination" description:"Country, region or city the traveler wants to visit"`
	NumberOfPeople int      `json:"number_of_people" mapstructure:"number_of_people" description:"Total party size"`
	NumberOfAdults int      `json:"number_of_adults,omitempty" mapstructure:"number_of_adults" description:"Travelers aged 18 or older"`
	NumberOfKids   int      `json:"number_of_kids,omitempty" mapstructure:"number_of_kids" description:"Travelers under 18"`
	NumberOfDays   int      `json:"number_of_days" mapstructure:"number_of_days" description:"Trip duration in days"`
	Budget         float64  `json:"budget" mapstructure:"budget" description:"Total budget for the trip"`
	Currency       string   `json:"currency,omitempty" mapstructure:"currency" description:"ISO currency code of the budget; the destination's currency if not stated"`
	HasKids        bool     `json:"has_kids,omitempty" mapstructure:"has_kids" description:"Whether children travel along"`
	HasDisability  bool     `json:"has_disability,omitempty" mapstructure:"has_disability" description:"Whether accessibility is required"`
	HasPets        bool     `json:"has_pets,omitempty" mapstructure:"has_pets" description:"Whether pets travel along"`
	IsVegetarian   bool     `json:"is_vegetarian,omitempty" mapstructure:"is_vegetarian" description:"Whether dining should be vegetarian"`
	Preferences    []string `json:"preferences,omitempty" mapstructure:"preferences" description:"Interests such as culture, nature, food"`
	OriginCountry  string   `json:"origin_country,omitempty" mapstructure:"origin_country" description:"Country the traveler departs from"`
}

// Profile defaults applied to every field the traveler did not state.
const (
	DefaultDestination = "Sri Lanka"
	DefaultPartySize   = 1
	DefaultTripDays    = 7
	DefaultTripBudget  = 1000
)

// DefaultProfile returns the documented defaults: a single adult traveling for
// a week on a budget of 1000 with no special requirements. Currency is left
// empty so the profile stage can fill in the destination's currency.
func DefaultProfile() TravelerProfile {
	return TravelerProfile{
		Destination:    DefaultDestination,
		NumberOfPeople: DefaultPartySize,
		NumberOfAdults: DefaultPartySize,
		NumberOfDays:   DefaultTripDays,
		Budget:         DefaultTripBudget,
		Preferences:    []string{},
	}
}

// Clone returns a copy that does not share the Preferences slice.
func (p TravelerProfile) Clone() TravelerProfile {
	c := p
	if p.Preferences != nil {
		c.Preferences = make([]string, len(p.Preferences))
		copy(c.Preferences, p.Preferences)
	}
	return c
}
