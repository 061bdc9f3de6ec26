package krishimitra

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type UserSettings struct {
	SendWeatherAlerts bool `json:"send_weather_alerts,omitempty"`
	SendDailyDigest   bool `json:"send_daily_digest,omitempty"`
}

func (us UserSettings) Value() (driver.Value, error) {
	return json.Marshal(us)
}

func (us *UserSettings) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("can't decode user settings")
	}

	return json.Unmarshal(b, &us)
}

// A User is a farmer account as stored locally. Authentication itself is
// delegated to the AuthService; by the time a User reaches the forum
// operations its identity is already verified.
type User struct {
	ID          int64        `db:"id"`
	Name        string       `db:"name"`
	Email       string       `db:"email"`
	CreatedAt   time.Time    `db:"created_at"`
	Settings    UserSettings `db:"settings"`
	LastLoginAt time.Time    `db:"last_login_at"`
}
