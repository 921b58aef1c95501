package api

import "encoding/json"

// Codec marshals messages with encoding/json. It replaces Connect's default
// "json" codec, which only accepts protobuf messages.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }
