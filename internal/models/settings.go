package models

// CompanySettings содержит реквизиты компании, подставляемые в предложения.
type CompanySettings struct {
	CompanyName    string `json:"company_name"`
	CompanyEmail   string `json:"company_email"`
	CompanyPhone   string `json:"company_phone,omitempty"`
	CompanyAddress string `json:"company_address,omitempty"`
}

// HealthStatus описывает ответ проверки доступности бэкенда.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
