package tools

import (
	"encoding/json"

	"insurance_intake_backend/platform/ai/openaichat"
)

// definition pairs a tool's model-facing description with its handler name.
type definition struct {
	name        string
	description string
	parameters  json.RawMessage
}

var emptyParameters = json.RawMessage(`{"type":"object","properties":{}}`)

// catalog is the closed set of tools offered to the model, in presentation
// order. Handlers are looked up by name in the registry.
var catalog = []definition{
	{
		name:        "get_current_time",
		description: "Get the current date and time.",
		parameters:  emptyParameters,
	},
	{
		name:        "set_user_action",
		description: "Set the user action type (add/update) and insurance type. Must be called before collecting any insurance details.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"action_type": {"type": "string", "enum": ["add", "update"], "description": "Either 'add' for new insurance or 'update' for existing policy"},
				"insurance_type": {"type": "string", "enum": ["home", "auto", "flood", "life", "commercial"], "description": "Type of insurance"}
			},
			"required": ["action_type", "insurance_type"]
		}`),
	},
	{
		name:        "collect_home_insurance_data",
		description: "Collect home insurance information from the user.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"full_name": {"type": "string", "description": "Full name of primary insured"},
				"date_of_birth": {"type": "string", "description": "Date of birth (YYYY-MM-DD format)"},
				"street_address": {"type": "string", "description": "Property street address"},
				"city": {"type": "string", "description": "Property city"},
				"state": {"type": "string", "description": "Property state"},
				"country": {"type": "string", "description": "Property country"},
				"zip_code": {"type": "string", "description": "Property zip code"},
				"phone": {"type": "string", "description": "Phone number"},
				"email": {"type": "string", "description": "Email address"},
				"spouse_name": {"type": "string", "description": "Spouse name (optional)"},
				"spouse_dob": {"type": "string", "description": "Spouse date of birth (YYYY-MM-DD format, optional)"},
				"has_solar_panels": {"type": "boolean", "description": "Whether property has solar panels"},
				"has_pool": {"type": "boolean", "description": "Whether property has a pool"},
				"roof_age": {"type": "integer", "description": "Age of roof in years"},
				"has_pets": {"type": "boolean", "description": "Whether household has pets"},
				"current_provider": {"type": "string", "description": "Current insurance provider (optional)"},
				"renewal_date": {"type": "string", "description": "Current policy renewal date (YYYY-MM-DD format, optional)"},
				"renewal_premium": {"type": "number", "description": "Current renewal premium amount (optional)"}
			},
			"required": ["full_name", "date_of_birth", "street_address", "city", "state", "country", "zip_code", "phone", "email"]
		}`),
	},
	{
		name:        "collect_auto_insurance_data",
		description: "Collect auto insurance information from the user.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"driver_name": {"type": "string", "description": "Full name of driver"},
				"driver_dob": {"type": "string", "description": "Driver date of birth (YYYY-MM-DD format)"},
				"license_number": {"type": "string", "description": "Driver's license number"},
				"qualification": {"type": "string", "description": "Driver qualification"},
				"profession": {"type": "string", "description": "Driver profession"},
				"gpa": {"type": "number", "description": "GPA if driver under 21, between 0.0 and 4.0 (optional)"},
				"vin": {"type": "string", "description": "Vehicle VIN (17 characters)"},
				"vehicle_make": {"type": "string", "description": "Vehicle make"},
				"vehicle_model": {"type": "string", "description": "Vehicle model"},
				"coverage_type": {"type": "string", "enum": ["liability", "full"], "description": "Coverage type"},
				"current_provider": {"type": "string", "description": "Current insurance provider (optional)"},
				"renewal_date": {"type": "string", "description": "Current policy renewal date (YYYY-MM-DD format, optional)"},
				"renewal_premium": {"type": "number", "description": "Current renewal premium amount (optional)"},
				"phone": {"type": "string", "description": "Phone number"},
				"email": {"type": "string", "description": "Email address"}
			},
			"required": ["driver_name", "driver_dob", "license_number", "vin", "vehicle_make", "vehicle_model", "phone"]
		}`),
	},
	{
		name:        "collect_flood_insurance_data",
		description: "Collect flood insurance information from the user.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"full_name": {"type": "string", "description": "Full name of insured"},
				"street_address": {"type": "string", "description": "Home street address"},
				"city": {"type": "string", "description": "Home city"},
				"state": {"type": "string", "description": "Home state"},
				"country": {"type": "string", "description": "Home country"},
				"zip_code": {"type": "string", "description": "Home zip code"},
				"phone": {"type": "string", "description": "Phone number"},
				"email": {"type": "string", "description": "Email address"}
			},
			"required": ["full_name", "street_address", "city", "state", "country", "zip_code", "phone", "email"]
		}`),
	},
	{
		name:        "collect_life_insurance_data",
		description: "Collect life insurance information from the user.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"full_name": {"type": "string", "description": "Full name of insured"},
				"date_of_birth": {"type": "string", "description": "Date of birth (YYYY-MM-DD format)"},
				"street_address": {"type": "string", "description": "Street address"},
				"city": {"type": "string", "description": "City"},
				"state": {"type": "string", "description": "State"},
				"country": {"type": "string", "description": "Country"},
				"zip_code": {"type": "string", "description": "Zip code"},
				"appointment_requested": {"type": "boolean", "description": "Whether customer wants an appointment"},
				"appointment_date": {"type": "string", "description": "Requested appointment date and time (YYYY-MM-DD HH:MM format, optional)"},
				"policy_type": {"type": "string", "enum": ["term", "whole", "universal", "annuity", "long_term_care"], "description": "Type of policy (optional)"},
				"phone": {"type": "string", "description": "Phone number"},
				"email": {"type": "string", "description": "Email address"}
			},
			"required": ["full_name", "date_of_birth", "street_address", "city", "state", "country", "zip_code", "appointment_requested", "phone"]
		}`),
	},
	{
		name:        "collect_commercial_insurance_data",
		description: "Collect commercial insurance information from the user.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"business_name": {"type": "string", "description": "Name of the business"},
				"business_type": {"type": "string", "description": "Type of business"},
				"street_address": {"type": "string", "description": "Business street address"},
				"city": {"type": "string", "description": "Business city"},
				"state": {"type": "string", "description": "Business state"},
				"country": {"type": "string", "description": "Business country"},
				"zip_code": {"type": "string", "description": "Business zip code"},
				"inventory_limit": {"type": "number", "description": "Inventory coverage limit (optional)"},
				"building_coverage": {"type": "boolean", "description": "Whether building coverage is needed"},
				"building_coverage_limit": {"type": "number", "description": "Building coverage limit, required when building coverage is needed"},
				"current_provider": {"type": "string", "description": "Current insurance provider (optional)"},
				"renewal_date": {"type": "string", "description": "Current policy renewal date (YYYY-MM-DD format, optional)"},
				"renewal_premium": {"type": "number", "description": "Current renewal premium amount (optional)"},
				"phone": {"type": "string", "description": "Phone number"},
				"email": {"type": "string", "description": "Email address"}
			},
			"required": ["business_name", "street_address", "city", "state", "country", "zip_code", "phone"]
		}`),
	},
	{
		name:        "submit_quote_request",
		description: "Submit the collected insurance quote request.",
		parameters:  emptyParameters,
	},
	{
		name:        "get_policy_by_number",
		description: "Look up an existing policy by policy number, including the owning customer and their other policies.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"policy_number": {"type": "string", "description": "The policy number to search for"}
			},
			"required": ["policy_number"]
		}`),
	},
	{
		name:        "get_ams360_customer_policies",
		description: "Get all policies for a specific customer from the agency management system.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"customer_id": {"type": "string", "description": "Customer ID"}
			},
			"required": ["customer_id"]
		}`),
	},
	{
		name:        "search_ams360_customer_by_name",
		description: "Search for a customer in the agency management system by name.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Customer name or name prefix"}
			},
			"required": ["name"]
		}`),
	},
	{
		name:        "search_ams360_customer_by_phone",
		description: "Search for a customer in the agency management system by phone number.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"phone": {"type": "string", "description": "Phone number to search for"}
			},
			"required": ["phone"]
		}`),
	},
	{
		name:        "create_agencyzoom_lead",
		description: "Create a new lead in the CRM with detailed information.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"first_name": {"type": "string"},
				"last_name": {"type": "string"},
				"email": {"type": "string"},
				"phone": {"type": "string"},
				"insurance_type": {"type": "string"},
				"notes": {"type": "string"},
				"address": {"type": "string"},
				"date_of_birth": {"type": "string"},
				"current_provider": {"type": "string"},
				"vehicle_info": {"type": "string"},
				"property_info": {"type": "string"},
				"business_name": {"type": "string"},
				"appointment_requested": {"type": "boolean"}
			},
			"required": ["first_name", "last_name", "email", "phone", "insurance_type"]
		}`),
	},
	{
		name:        "search_agencyzoom_contact_by_phone",
		description: "Search for a contact in the CRM by phone number.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"phone": {"type": "string", "description": "Phone number to search for"}
			},
			"required": ["phone"]
		}`),
	},
	{
		name:        "search_agencyzoom_contact_by_email",
		description: "Search for a contact in the CRM by email address.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"email": {"type": "string", "description": "Email address to search for"}
			},
			"required": ["email"]
		}`),
	},
	{
		name:        "submit_collected_data_to_agencyzoom",
		description: "Submit all collected insurance data to the CRM as a comprehensive lead.",
		parameters:  emptyParameters,
	},
}

// Definitions returns the tool catalog in the model wire shape.
func Definitions() []openaichat.Tool {
	out := make([]openaichat.Tool, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, openaichat.Tool{
			Name:        d.name,
			Description: d.description,
			Parameters:  d.parameters,
		})
	}
	return out
}
