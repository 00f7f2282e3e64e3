package export

import (
	"strings"
	"testing"
)

func TestService_Export(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantData string
		wantErr  bool
	}{
		{name: "object is echoed", body: `{"notes":[60,62]}`, wantData: `{"notes":[60,62]}`},
		{name: "empty body becomes empty object", body: "", wantData: "{}"},
		{name: "whitespace trimmed", body: "  {\"a\":1}\n", wantData: `{"a":1}`},
		{name: "invalid JSON", body: `{"notes":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewService().Export([]byte(tt.body))

			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
					t.Errorf("Export() error = %v, want invalid JSON", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Export() unexpected error: %v", err)
			}
			if got.Message != ClientSideMessage {
				t.Errorf("Message = %q, want %q", got.Message, ClientSideMessage)
			}
			if string(got.Data) != tt.wantData {
				t.Errorf("Data = %s, want %s", got.Data, tt.wantData)
			}
		})
	}
}
