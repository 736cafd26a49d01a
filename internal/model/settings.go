package model

// StoreSettings is a single-row table holding the store profile and the
// credentials for outbound integrations. It is loaded explicitly and passed
// to the components that need it instead of living in ambient global state.
type StoreSettings struct {
	BaseModel
	StoreName    string `gorm:"type:varchar(255)" json:"store_name"`
	StoreAddress string `gorm:"type:text" json:"store_address"`
	StorePhone   string `gorm:"type:varchar(30)" json:"store_phone"`

	// QRIS payment gateway
	QrisBaseURL string `gorm:"type:varchar(255)" json:"qris_base_url"`
	QrisAPIKey  string `gorm:"type:varchar(255)" json:"-"`

	// Outbound webhook notifications
	WebhookURL   string `gorm:"type:varchar(255)" json:"webhook_url"`
	WebhookToken string `gorm:"type:varchar(255)" json:"-"`

	// Low stock alert recipient
	AlertEmail string `gorm:"type:varchar(255)" json:"alert_email"`
}

func (StoreSettings) TableName() string {
	return "store_settings"
}
