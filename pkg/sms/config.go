package sms

// Drivers accepted by Config.Driver.
const (
	DriverSNS = "sns"
	DriverLog = "log"
)

// Config holds SMS transport settings.
type Config struct {
	// Enabled is the service-wide switch. When false every SMS delivery
	// fails with "SMS service disabled" regardless of user preferences.
	Enabled     bool   `env:"SMS_ENABLED" envDefault:"false"`
	Driver      string `env:"SMS_DRIVER" envDefault:"sns"`
	Region      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint    string `env:"SNS_ENDPOINT"`
	SenderID    string `env:"SMS_SENDER_ID"`
	SMSType     string `env:"SMS_TYPE" envDefault:"Transactional"`
	// FoldDiacritics strips accents so messages stay in the GSM-7 alphabet
	// and are billed as single segments.
	FoldDiacritics bool `env:"SMS_FOLD_DIACRITICS" envDefault:"false"`
}
