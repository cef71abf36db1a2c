package overpass

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	errTimeout   = errors.New("overpass timeout")
	errDupeQuery = errors.New("overpass rejected duplicate query")

	readAndIdxBytes = []byte("Dispatcher_Client::request_read_and_idx::")
	queryTimedOut   = []byte("runtime error: Query timed out")

	readAndIdxErrors = []struct {
		token []byte
		err   error
	}{
		{[]byte("timeout"), errTimeout},
		{[]byte("duplicate_query"), errDupeQuery},
		{[]byte("rate_limited"), errDupeQuery},
	}
)

// matchBodyAgainstErrors maps the error text overpass embeds in a response
// body to one of our errors. nil means no known error text was found.
func matchBodyAgainstErrors(body []byte) error {
	if bytes.Contains(body, queryTimedOut) {
		return errTimeout
	}

	idx := bytes.Index(body, readAndIdxBytes)
	if idx < 0 {
		return nil
	}

	rest := body[idx+len(readAndIdxBytes):]
	for _, entry := range readAndIdxErrors {
		if bytes.HasPrefix(rest, entry.token) {
			return entry.err
		}
	}

	if len(rest) > 80 {
		rest = rest[:80]
	}
	return fmt.Errorf("unknown overpass error: %s", string(rest))
}
