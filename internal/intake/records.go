package intake

// Record shapes for the five supported insurance types. Field-level
// constraints are expressed as validator tags and checked when the
// conversation collects a record. Dates ride as strings in the wire format
// the model is instructed to produce (YYYY-MM-DD).

// ActionType is what the caller wants to do with a policy.
type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionUpdate ActionType = "update"
)

// InsuranceType identifies one of the supported intake branches.
type InsuranceType string

const (
	TypeHome       InsuranceType = "home"
	TypeAuto       InsuranceType = "auto"
	TypeFlood      InsuranceType = "flood"
	TypeLife       InsuranceType = "life"
	TypeCommercial InsuranceType = "commercial"
)

// InsuranceTypes lists every supported branch, in presentation order.
var InsuranceTypes = []InsuranceType{TypeHome, TypeAuto, TypeFlood, TypeLife, TypeCommercial}

// Valid reports whether t is one of the supported insurance types.
func (t InsuranceType) Valid() bool {
	switch t {
	case TypeHome, TypeAuto, TypeFlood, TypeLife, TypeCommercial:
		return true
	}
	return false
}

// Valid reports whether a is a supported action type.
func (a ActionType) Valid() bool {
	return a == ActionAdd || a == ActionUpdate
}

// CoverageType is the desired auto coverage level.
type CoverageType string

const (
	CoverageLiability CoverageType = "liability"
	CoverageFull      CoverageType = "full"
)

// PolicyType is the life insurance product family.
type PolicyType string

const (
	PolicyTerm         PolicyType = "term"
	PolicyWhole        PolicyType = "whole"
	PolicyUniversal    PolicyType = "universal"
	PolicyAnnuity      PolicyType = "annuity"
	PolicyLongTermCare PolicyType = "long_term_care"
)

// Address is a postal address shared by all record types.
type Address struct {
	StreetAddress string `json:"street_address" validate:"required"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	Country       string `json:"country" validate:"required"`
	ZipCode       string `json:"zip_code" validate:"required"`
}

// ContactInfo is the best way to reach the insured.
type ContactInfo struct {
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Person identifies an insured individual.
type Person struct {
	FullName    string `json:"full_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// PolicyInfo captures the caller's current policy, when they have one.
type PolicyInfo struct {
	CurrentProvider string   `json:"current_provider,omitempty"`
	RenewalDate     string   `json:"renewal_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RenewalPremium  *float64 `json:"renewal_premium,omitempty" validate:"omitempty,gte=0"`
}

// PropertyDetails describes the property on a home record.
type PropertyDetails struct {
	Address        Address `json:"address" validate:"required"`
	HasSolarPanels bool    `json:"has_solar_panels"`
	HasPool        bool    `json:"has_pool"`
	RoofAge        int     `json:"roof_age" validate:"gte=0"`
}

// HomeRecord is the collected intake record for a home insurance quote.
type HomeRecord struct {
	PrimaryInsured Person          `json:"primary_insured" validate:"required"`
	Spouse         *Person         `json:"spouse,omitempty"`
	Property       PropertyDetails `json:"property" validate:"required"`
	HasPets        bool            `json:"has_pets"`
	CurrentPolicy  PolicyInfo      `json:"current_policy"`
	Contact        ContactInfo     `json:"contact" validate:"required"`
}

// Driver is a person licensed to drive a vehicle on an auto record.
// GPA only applies to drivers under 21 and must lie in [0.0, 4.0].
type Driver struct {
	Person
	LicenseNumber string   `json:"license_number" validate:"required"`
	Qualification string   `json:"qualification" validate:"required"`
	Profession    string   `json:"profession" validate:"required"`
	GPA           *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=4"`
}

// Vehicle is a vehicle on an auto record. The VIN is stored uppercased and
// is always exactly 17 characters.
type Vehicle struct {
	VIN          string       `json:"vin" validate:"required,len=17"`
	Make         string       `json:"make" validate:"required"`
	Model        string       `json:"model" validate:"required"`
	CoverageType CoverageType `json:"coverage_type" validate:"required,oneof=liability full"`
}

// AutoRecord is the collected intake record for an auto insurance quote.
type AutoRecord struct {
	Drivers       []Driver    `json:"drivers" validate:"required,min=1,dive"`
	Vehicles      []Vehicle   `json:"vehicles" validate:"required,min=1,dive"`
	CurrentPolicy PolicyInfo  `json:"current_policy"`
	Contact       ContactInfo `json:"contact" validate:"required"`
}

// FloodRecord is the collected intake record for a flood insurance quote.
type FloodRecord struct {
	FullName    string  `json:"full_name" validate:"required"`
	HomeAddress Address `json:"home_address" validate:"required"`
	Phone       string  `json:"phone" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
}

// LifeRecord is the collected intake record for a life insurance quote.
type LifeRecord struct {
	Insured              Person      `json:"insured" validate:"required"`
	Address              Address     `json:"address" validate:"required"`
	AppointmentRequested bool        `json:"appointment_requested"`
	AppointmentDate      string      `json:"appointment_date,omitempty" validate:"omitempty,datetime=2006-01-02 15:04"`
	Contact              ContactInfo `json:"contact" validate:"required"`
	PolicyType           PolicyType  `json:"policy_type,omitempty" validate:"omitempty,oneof=term whole universal annuity long_term_care"`
}

// BusinessDetails describes the business on a commercial record.
type BusinessDetails struct {
	Name    string  `json:"name" validate:"required"`
	Type    string  `json:"type" validate:"required"`
	Address Address `json:"address" validate:"required"`
}

// CoverageDetails captures the commercial coverage asks. A building coverage
// limit is required whenever building coverage is requested.
type CoverageDetails struct {
	InventoryLimit        *float64 `json:"inventory_limit,omitempty" validate:"omitempty,gte=0"`
	BuildingCoverage      bool     `json:"building_coverage"`
	BuildingCoverageLimit *float64 `json:"building_coverage_limit,omitempty" validate:"required_if=BuildingCoverage true,omitempty,gte=0"`
}

// CommercialRecord is the collected intake record for a commercial quote.
type CommercialRecord struct {
	Business      BusinessDetails `json:"business" validate:"required"`
	Coverage      CoverageDetails `json:"coverage" validate:"required"`
	CurrentPolicy PolicyInfo      `json:"current_policy"`
	Contact       ContactInfo     `json:"contact" validate:"required"`
}

// Record is the typed variant keyed by insurance type. Exactly one of the
// pointers matching Type is set once data has been collected.
type Record struct {
	Type       InsuranceType     `json:"insurance_type"`
	Home       *HomeRecord       `json:"home_insurance,omitempty"`
	Auto       *AutoRecord       `json:"auto_insurance,omitempty"`
	Flood      *FloodRecord      `json:"flood_insurance,omitempty"`
	Life       *LifeRecord       `json:"life_insurance,omitempty"`
	Commercial *CommercialRecord `json:"commercial_insurance,omitempty"`
}

// Empty reports whether no data has been collected for the record's type.
func (r Record) Empty() bool {
	switch r.Type {
	case TypeHome:
		return r.Home == nil
	case TypeAuto:
		return r.Auto == nil
	case TypeFlood:
		return r.Flood == nil
	case TypeLife:
		return r.Life == nil
	case TypeCommercial:
		return r.Commercial == nil
	}
	return true
}

// ContactName returns the primary name on the record, used for lead mapping
// and archive file names.
func (r Record) ContactName() string {
	switch {
	case r.Home != nil:
		return r.Home.PrimaryInsured.FullName
	case r.Auto != nil && len(r.Auto.Drivers) > 0:
		return r.Auto.Drivers[0].FullName
	case r.Flood != nil:
		return r.Flood.FullName
	case r.Life != nil:
		return r.Life.Insured.FullName
	case r.Commercial != nil:
		return r.Commercial.Business.Name
	}
	return ""
}

// ContactEmail returns the email on the record, or "" when absent.
func (r Record) ContactEmail() string {
	switch {
	case r.Home != nil:
		return r.Home.Contact.Email
	case r.Auto != nil:
		return r.Auto.Contact.Email
	case r.Flood != nil:
		return r.Flood.Email
	case r.Life != nil:
		return r.Life.Contact.Email
	case r.Commercial != nil:
		return r.Commercial.Contact.Email
	}
	return ""
}

// ContactPhone returns the phone number on the record, or "" when absent.
func (r Record) ContactPhone() string {
	switch {
	case r.Home != nil:
		return r.Home.Contact.Phone
	case r.Auto != nil:
		return r.Auto.Contact.Phone
	case r.Flood != nil:
		return r.Flood.Phone
	case r.Life != nil:
		return r.Life.Contact.Phone
	case r.Commercial != nil:
		return r.Commercial.Contact.Phone
	}
	return ""
}
