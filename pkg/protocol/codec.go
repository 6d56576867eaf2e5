package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Common codec errors.
var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownCodec   = errors.New("unknown codec type")
)

// SubprotocolPrefix prefixes codec names in the Sec-WebSocket-Protocol header.
const SubprotocolPrefix = "live."

// Codec handles message encoding/decoding.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)

	// Name returns the codec name, e.g. "json".
	Name() string

	// Binary reports whether frames must be sent as binary messages.
	Binary() bool
}

// Subprotocol returns the WebSocket subprotocol that selects c.
func Subprotocol(c Codec) string {
	return SubprotocolPrefix + c.Name()
}

// JSONCodec implements Codec using JSON encoding.
type JSONCodec struct{}

func (JSONCodec) Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Event == "" {
		return Message{}, fmt.Errorf("%w: missing event", ErrInvalidMessage)
	}
	return msg, nil
}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

// MsgPackCodec implements Codec using MessagePack encoding.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(msg Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (MsgPackCodec) Decode(data []byte) (Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Event == "" {
		return Message{}, fmt.Errorf("%w: missing event", ErrInvalidMessage)
	}
	return msg, nil
}

func (MsgPackCodec) Name() string { return "msgpack" }
func (MsgPackCodec) Binary() bool { return true }

// CodecRegistry is an ordered set of codecs with a default.
// It is built once at startup and read concurrently afterwards.
type CodecRegistry struct {
	codecs   map[string]Codec
	order    []string
	fallback Codec
}

// NewCodecRegistry returns a registry holding the JSON and MsgPack codecs,
// with JSON as the default.
func NewCodecRegistry() *CodecRegistry {
	r := &CodecRegistry{codecs: make(map[string]Codec)}
	r.Register(JSONCodec{})
	r.Register(MsgPackCodec{})
	r.fallback = JSONCodec{}
	return r
}

// Register adds a codec to the registry.
func (r *CodecRegistry) Register(c Codec) {
	if _, ok := r.codecs[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.codecs[c.Name()] = c
}

// Get retrieves a codec by name.
func (r *CodecRegistry) Get(name string) (Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

// Default returns the codec used when the client asks for none.
func (r *CodecRegistry) Default() Codec {
	return r.fallback
}

// SetDefault sets the default codec by name.
func (r *CodecRegistry) SetDefault(name string) error {
	c, ok := r.codecs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	r.fallback = c
	return nil
}

// Subprotocols lists the subprotocols the server accepts, default first.
func (r *CodecRegistry) Subprotocols() []string {
	out := []string{Subprotocol(r.fallback)}
	for _, name := range r.order {
		if name != r.fallback.Name() {
			out = append(out, SubprotocolPrefix+name)
		}
	}
	return out
}

// Negotiate picks the codec for the subprotocol the connection settled on.
// An empty or unrecognised subprotocol yields the default codec.
func (r *CodecRegistry) Negotiate(subprotocol string) Codec {
	name, ok := strings.CutPrefix(subprotocol, SubprotocolPrefix)
	if !ok {
		return r.fallback
	}
	if c, ok := r.codecs[name]; ok {
		return c
	}
	return r.fallback
}
