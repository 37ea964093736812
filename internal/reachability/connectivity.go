package reachability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultConnectivityAddress is a public DNS resolver reachable from most networks.
	DefaultConnectivityAddress = "8.8.8.8:53"
	// DefaultConnectivityTimeout bounds the connectivity dial.
	DefaultConnectivityTimeout = 3 * time.Second

	tcpNetworkConstant                = "tcp"
	connectivityFailureTemplate       = "%w: %s: %v"
	connectivityCheckedLogMessage     = "internet connectivity confirmed"
	logFieldAddressConstant           = "address"
	noInternetConnectionMessageString = "no internet connection found"
)

// ErrNoInternetConnection indicates the connectivity probe could not reach its address.
var ErrNoInternetConnection = errors.New(noInternetConnectionMessageString)

// ContextDialer opens network connections.
type ContextDialer interface {
	DialContext(dialContext context.Context, network string, address string) (net.Conn, error)
}

// ConnectivityChecker verifies that a TCP connection to a well known address
// can be opened within a short bound.
type ConnectivityChecker struct {
	dialer  ContextDialer
	logger  *zap.Logger
	address string
	timeout time.Duration
}

// NewConnectivityChecker constructs a checker. A nil dialer uses net.Dialer.
func NewConnectivityChecker(dialer ContextDialer, logger *zap.Logger, address string, timeout time.Duration) *ConnectivityChecker {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(address)) == 0 {
		address = DefaultConnectivityAddress
	}
	if timeout <= 0 {
		timeout = DefaultConnectivityTimeout
	}
	return &ConnectivityChecker{dialer: dialer, logger: logger, address: address, timeout: timeout}
}

// Check dials the configured address once and closes the connection.
func (checker *ConnectivityChecker) Check(executionContext context.Context) error {
	dialContext, cancel := context.WithTimeout(executionContext, checker.timeout)
	defer cancel()

	connection, dialError := checker.dialer.DialContext(dialContext, tcpNetworkConstant, checker.address)
	if dialError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		return fmt.Errorf(connectivityFailureTemplate, ErrNoInternetConnection, checker.address, dialError)
	}
	_ = connection.Close()

	checker.logger.Debug(connectivityCheckedLogMessage, zap.String(logFieldAddressConstant, checker.address))
	return nil
}
