package codec

import "strconv"

// RetryAttemptHeader is the message header carrying the retry counter as
// decimal ASCII. Primary-topic messages carry no header, which reads as 0.
const RetryAttemptHeader = "retry-attempt"

// AppendAttempt renders an attempt counter as the header value bytes
func AppendAttempt(attempt int) []byte {
	return strconv.AppendInt(nil, int64(attempt), 10)
}

// ParseAttempt reads an attempt counter from header value bytes. A missing,
// malformed or negative value parses to 0 so a bad header never stalls
// consumption.
func ParseAttempt(value []byte) int {
	if len(value) == 0 {
		return 0
	}

	attempt, err := strconv.Atoi(string(value))
	if err != nil || attempt < 0 {
		return 0
	}

	return attempt
}
