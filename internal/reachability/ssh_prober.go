package reachability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/execshell"
)

// DefaultProbeTimeout bounds an SSH probe when no timeout is configured.
const DefaultProbeTimeout = 5 * time.Second

const (
	sshTerminalFlagConstant             = "-T"
	sshOptionFlagConstant               = "-o"
	sshBatchModeOptionConstant          = "BatchMode=yes"
	sshConnectTimeoutOptionTemplate     = "ConnectTimeout=%d"
	sshHostKeyOptionConstant            = "StrictHostKeyChecking=accept-new"
	authenticatedBannerFragmentConstant = "successfully authenticated"
	probeStartedLogMessageConstant      = "probing ssh access"
	probeUsableLogMessageConstant       = "ssh access available"
	probeUnusableLogMessageConstant     = "ssh access unavailable"
	logFieldTargetConstant              = "target"
	logFieldReasonConstant              = "reason"
	emptyTargetReasonConstant           = "empty target"
	sshExecutorMissingReasonConstant    = "ssh executor not configured"
)

// SSHExecutor runs the ssh client.
type SSHExecutor interface {
	ExecuteSSH(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SSHProber performs a non-interactive SSH handshake against a host.
type SSHProber struct {
	executor SSHExecutor
	logger   *zap.Logger
	timeout  time.Duration
}

// NewSSHProber constructs an SSHProber bounded by timeout.
func NewSSHProber(executor SSHExecutor, logger *zap.Logger, timeout time.Duration) *SSHProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &SSHProber{executor: executor, logger: logger, timeout: timeout}
}

// Usable reports whether target (user@host) accepts key based authentication
// without prompting. It never fails: missing binaries, rejected keys, timeouts
// and any other error all yield false.
func (prober *SSHProber) Usable(executionContext context.Context, target string) bool {
	trimmedTarget := strings.TrimSpace(target)
	if len(trimmedTarget) == 0 {
		prober.logger.Info(probeUnusableLogMessageConstant, zap.String(logFieldReasonConstant, emptyTargetReasonConstant))
		return false
	}
	if prober.executor == nil {
		prober.logger.Info(probeUnusableLogMessageConstant, zap.String(logFieldTargetConstant, trimmedTarget), zap.String(logFieldReasonConstant, sshExecutorMissingReasonConstant))
		return false
	}

	probeContext, cancel := context.WithTimeout(executionContext, prober.timeout)
	defer cancel()

	prober.logger.Debug(probeStartedLogMessageConstant, zap.String(logFieldTargetConstant, trimmedTarget))
	_, probeError := prober.executor.ExecuteSSH(probeContext, execshell.CommandDetails{Arguments: prober.arguments(trimmedTarget)})
	if probeError == nil {
		prober.logger.Info(probeUsableLogMessageConstant, zap.String(logFieldTargetConstant, trimmedTarget))
		return true
	}

	// Hosts such as GitHub close -T sessions with exit code 1 after a
	// successful authentication and say so in the banner.
	var failure execshell.CommandFailedError
	if errors.As(probeError, &failure) && reportsAuthentication(failure.Result) {
		prober.logger.Info(probeUsableLogMessageConstant, zap.String(logFieldTargetConstant, trimmedTarget))
		return true
	}
	prober.logger.Info(probeUnusableLogMessageConstant, zap.String(logFieldTargetConstant, trimmedTarget), zap.Error(probeError))
	return false
}

func (prober *SSHProber) arguments(target string) []string {
	return []string{
		sshTerminalFlagConstant,
		sshOptionFlagConstant, sshBatchModeOptionConstant,
		sshOptionFlagConstant, fmt.Sprintf(sshConnectTimeoutOptionTemplate, timeoutSeconds(prober.timeout)),
		sshOptionFlagConstant, sshHostKeyOptionConstant,
		target,
	}
}

func timeoutSeconds(timeout time.Duration) int {
	seconds := int(math.Ceil(timeout.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func reportsAuthentication(result execshell.ExecutionResult) bool {
	combinedOutput := strings.ToLower(result.StandardOutput + result.StandardError)
	return strings.Contains(combinedOutput, authenticatedBannerFragmentConstant)
}
