package upstream

import (
	"arbt/internal/evidence/registry/providers"
)

// Tag identifies which variant of Outcome is active.
type Tag int

const (
	TagSuccess Tag = iota
	TagNotFound
	TagClientError
	TagServerError
	TagNetworkFailure
	TagDecodeFailure
)

func (t Tag) String() string {
	switch t {
	case TagSuccess:
		return "success"
	case TagNotFound:
		return "not_found"
	case TagClientError:
		return "client_error"
	case TagServerError:
		return "server_error"
	case TagNetworkFailure:
		return "network_failure"
	case TagDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one upstream fetch. Exactly one tag is
// active; the fields that do not belong to it are zero. Outcomes are values
// and are never mutated after construction.
type Outcome struct {
	tag     Tag
	url     string
	payload []byte
	status  int
	cause   error
}

func Success(url string, payload []byte) Outcome {
	return Outcome{tag: TagSuccess, url: url, payload: payload}
}

func NotFound(url string) Outcome {
	return Outcome{tag: TagNotFound, url: url, status: 404}
}

func ClientError(url string, status int) Outcome {
	return Outcome{tag: TagClientError, url: url, status: status}
}

func ServerError(url string, status int) Outcome {
	return Outcome{tag: TagServerError, url: url, status: status}
}

func NetworkFailure(url string, cause error) Outcome {
	return Outcome{tag: TagNetworkFailure, url: url, cause: cause}
}

func DecodeFailure(url string, cause error) Outcome {
	return Outcome{tag: TagDecodeFailure, url: url, cause: cause}
}

func (o Outcome) Tag() Tag        { return o.tag }
func (o Outcome) URL() string     { return o.url }
func (o Outcome) Payload() []byte { return o.payload }
func (o Outcome) Status() int     { return o.status }
func (o Outcome) Cause() error    { return o.cause }

// Err converts a failed outcome into its harvest error. It returns nil for
// TagSuccess.
func (o Outcome) Err() error {
	switch o.tag {
	case TagSuccess:
		return nil
	case TagNotFound:
		return providers.NewHarvestError(providers.ErrorOrganizationNotFound, o.url,
			"record not found upstream", nil).WithStatus(o.status)
	case TagClientError:
		return providers.NewHarvestError(providers.ErrorUpstreamClient, o.url,
			"upstream rejected the request", nil).WithStatus(o.status)
	case TagServerError:
		return providers.NewHarvestError(providers.ErrorUpstreamServer, o.url,
			"upstream failed to process the request", nil).WithStatus(o.status)
	case TagNetworkFailure:
		return providers.NewHarvestError(providers.ErrorNetwork, o.url,
			"upstream unreachable", o.cause)
	case TagDecodeFailure:
		return providers.NewHarvestError(providers.ErrorDecode, o.url,
			"did not understand the data model returned from upstream", o.cause)
	default:
		return providers.NewHarvestError(providers.ErrorInternal, o.url, "unclassified upstream outcome", o.cause)
	}
}
