package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/guregu/null/v6"
)

func TestQuoteJSONFieldNames(t *testing.T) {
	q := Quote{Symbol: "AAPL", Open: 1, LastUpdated: UnknownTimestamp}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"open_price":1`, `"last_updated":"Unknown"`, `"previous_close"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestSMAPointMarshalsMissingAsNull(t *testing.T) {
	data, err := json.Marshal([]SMAPoint{
		{Date: "2024-01-01", Price: 10},
		{Date: "2024-01-02", Price: 20, SMA: null.FloatFrom(15)},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"date":"2024-01-01","price":10,"sma":null},{"date":"2024-01-02","price":20,"sma":15}]`
	if string(data) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", data, want)
	}
}

func TestUserHidesPasswordHash(t *testing.T) {
	data, _ := json.Marshal(User{ID: 1, Username: "ann", HashedPassword: "secret"})
	if strings.Contains(string(data), "secret") {
		t.Fatalf("password hash leaked: %s", data)
	}
}
