package p2p

import (
	"peer-chat/errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessageEvent_Format(t *testing.T) {
	req := require.New(t)

	payload, err := EncodeMessageEvent("hi there", lo.ToPtr("abc123"))
	req.NoError(err)
	req.JSONEq(`{"type":"message","message":"hi there","from":"abc123"}`, string(payload))

	payload, err = EncodeMessageEvent("hi there", nil)
	req.NoError(err)
	req.JSONEq(`{"type":"message","message":"hi there","from":null}`, string(payload))
}

func TestDecodeMessageEvent(t *testing.T) {
	req := require.New(t)

	evt, err := DecodeMessageEvent([]byte(`{"type":"message","message":"hello","from":"QmPeer"}`))
	req.NoError(err)
	req.Equal("hello", evt.Message)
	req.Equal("QmPeer", *evt.From)

	// Absent sender is tolerated
	evt, err = DecodeMessageEvent([]byte(`{"type":"message","message":"hello"}`))
	req.NoError(err)
	req.Nil(evt.From)

	_, err = DecodeMessageEvent([]byte(`{"type":"presence"}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	_, err = DecodeMessageEvent([]byte(`not json`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestDecodeBroadcast(t *testing.T) {
	req := require.New(t)

	payload, err := EncodeBroadcast("hello")
	req.NoError(err)
	req.JSONEq(`{"message":"hello"}`, string(payload))

	_, err = DecodeBroadcast([]byte(`[]`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}
