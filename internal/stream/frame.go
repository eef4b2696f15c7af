package stream

import (
	"encoding/json"
	"strconv"
)

// SubscribeQuery filters the node's event stream to transaction events.
const SubscribeQuery = "tm.event='Tx'"

// subscribeID correlates the subscription ack with our request.
const subscribeID = 1

type subscribeRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      int             `json:"id"`
	Params  subscribeParams `json:"params"`
}

type subscribeParams struct {
	Query string `json:"query"`
}

func newSubscribeRequest(query string) subscribeRequest {
	return subscribeRequest{
		JSONRPC: "2.0",
		Method:  "subscribe",
		ID:      subscribeID,
		Params:  subscribeParams{Query: query},
	}
}

// frame is one inbound JSON-RPC envelope. The ack, data and error cases all
// use this shape; they differ only in which fields are populated.
type frame struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      json.Number  `json:"id"`
	Result  *frameResult `json:"result"`
	Error   *rpcError    `json:"error"`
}

type frameResult struct {
	Data   json.RawMessage     `json:"data"`
	Events map[string][]string `json:"events"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// isData reports whether the frame carries event content. A bare ack has a
// result too, but with neither events nor data inside it.
func (f *frame) isData() bool {
	if f.Result == nil {
		return false
	}
	return len(f.Result.Events) > 0 || len(f.Result.Data) > 0
}

// isAck reports whether the frame is the explicit subscription ack.
func (f *frame) isAck() bool {
	return f.ID.String() == strconv.Itoa(subscribeID) && !f.isData()
}
