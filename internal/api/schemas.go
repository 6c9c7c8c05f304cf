package api

const createCompanySchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "fiscal_year_end": {"type": "integer", "minimum": 1, "maximum": 12},
    "currency": {"type": "string", "pattern": "^[A-Za-z]{3}$"}
  }
}`

const updateCompanySchema = `{
  "type": "object",
  "additionalProperties": false,
  "minProperties": 1,
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "fiscal_year_end": {"type": "integer", "minimum": 1, "maximum": 12},
    "currency": {"type": "string", "pattern": "^[A-Za-z]{3}$"}
  }
}`

// Row content is checked by the ingestion validator so that malformed rows
// are reported with their row number.
const trialBalanceSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["rows"],
  "properties": {
    "rows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["account_number", "account_name", "balance"],
        "properties": {
          "account_number": {"type": ["string", "integer"]},
          "account_name": {"type": "string"},
          "balance": {"type": ["integer", "string"]}
        }
      }
    }
  }
}`

const mappingsSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["mappings"],
  "properties": {
    "mapped_by": {"type": "string", "maxLength": 255},
    "mappings": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["company_account_id", "master_account_id"],
        "properties": {
          "company_account_id": {"type": "string", "minLength": 1},
          "master_account_id": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

const forecastConfigSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "scenario_name": {"type": "string", "minLength": 1, "maxLength": 100},
    "base_period": {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "num_periods": {"type": "integer", "minimum": 1, "maximum": 12},
    "revenue_growth_pct": {"type": "integer", "minimum": -10000},
    "cogs_pct_of_revenue": {"type": "integer", "minimum": 0, "maximum": 10000},
    "opex_growth_pct": {"type": "integer", "minimum": -10000},
    "tax_rate_pct": {"type": "integer", "minimum": 0, "maximum": 10000},
    "capex_cents": {"type": "integer", "minimum": 0},
    "da_cents": {"type": "integer", "minimum": 0},
    "wc_pct_of_revenue": {"type": "integer", "minimum": 0, "maximum": 10000}
  }
}`
