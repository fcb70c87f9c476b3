package clickhouse

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"syscall"

	ch "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
)

// Server exception codes that mean the credentials were rejected.
var accessDeniedCodes = map[int32]bool{
	192: true, // UNKNOWN_USER
	193: true, // WRONG_PASSWORD
	194: true, // REQUIRED_PASSWORD
	516: true, // AUTHENTICATION_FAILED
}

// stringCodes maps errno-style codes carried by errors with a Code() string method.
var stringCodes = map[string]core.ConnectionErrorKind{
	"ECONNREFUSED":           core.ConnectionRefused,
	"ER_ACCESS_DENIED_ERROR": core.AccessDenied,
	"ENOTFOUND":              core.HostNotFound,
	"EHOSTUNREACH":           core.HostNotReachable,
	"EINVAL":                 core.InvalidConnection,
}

// HTTP transport errors carry the exception code only in their message.
var messageCode = regexp.MustCompile(`(?i)\bcode:\s*(\d+)`)

type codedError interface {
	Code() string
}

// ClassifyError wraps a client error in a *core.ConnectionError whose kind
// reflects the failure. Nil stays nil.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var ce *core.ConnectionError
	if errors.As(err, &ce) {
		return err
	}
	return core.NewConnectionError(errorKind(err), err)
}

func errorKind(err error) core.ConnectionErrorKind {
	var coded codedError
	if errors.As(err, &coded) {
		if kind, ok := stringCodes[coded.Code()]; ok {
			return kind
		}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return core.ConnectionRefused
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return core.HostNotReachable
	case errors.Is(err, syscall.EINVAL):
		return core.InvalidConnection
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return core.HostNotFound
	}

	var ex *ch.Exception
	if errors.As(err, &ex) {
		if accessDeniedCodes[ex.Code] {
			return core.AccessDenied
		}
		return core.ConnectionFailed
	}

	if m := messageCode.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.ParseInt(m[1], 10, 32); convErr == nil && accessDeniedCodes[int32(code)] {
			return core.AccessDenied
		}
	}

	return core.ConnectionFailed
}
