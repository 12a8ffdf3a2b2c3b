package redis

import (
	"bytes"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestExtractPayload(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]interface{}
		want   []byte
	}{
		{
			name:   "string_payload",
			values: map[string]interface{}{"payload": `{"lectureId":"x"}`},
			want:   []byte(`{"lectureId":"x"}`),
		},
		{
			name:   "bytes_payload",
			values: map[string]interface{}{"payload": []byte("raw")},
			want:   []byte("raw"),
		},
		{
			name:   "missing_field",
			values: map[string]interface{}{"other": "x"},
			want:   nil,
		},
		{
			name:   "wrong_type",
			values: map[string]interface{}{"payload": 42},
			want:   nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractPayload(goredis.XMessage{ID: "1-0", Values: tc.values})
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("extractPayload=%q, want %q", got, tc.want)
			}
		})
	}
}
