package storage

import "encoding/json"

func encodeStageList(stages []string) string {
	if stages == nil {
		stages = []string{}
	}
	b, err := json.Marshal(stages)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStageList(raw string) []string {
	if raw == "" {
		return nil
	}
	var stages []string
	if err := json.Unmarshal([]byte(raw), &stages); err != nil {
		return nil
	}
	return stages
}
