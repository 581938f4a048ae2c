package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/godror/godror"
)

// ConnectivityKind classifies why the server could not be reached.
type ConnectivityKind string

const (
	KindServerUnreachable ConnectivityKind = "server_unreachable"
	KindBadCredentials    ConnectivityKind = "bad_credentials"
	KindUnknownDatabase   ConnectivityKind = "unknown_database"
	KindTimeout           ConnectivityKind = "timeout"
	KindUnknown           ConnectivityKind = "unknown"
)

var hints = map[ConnectivityKind]string{
	KindServerUnreachable: "check host, port and that the listener is running",
	KindBadCredentials:    "check user and password",
	KindUnknownDatabase:   "check the database or service name",
	KindTimeout:           "the server did not answer in time; check network path and connect_timeout",
}

// ConnectivityError is a connection failure with a diagnosis.
type ConnectivityError struct {
	Kind   ConnectivityKind
	Engine string
	Addr   string
	Code   int // server or client error number, 0 if unknown
	Err    error
}

func (e *ConnectivityError) Error() string {
	msg := fmt.Sprintf("%s connection failed (%s)", e.Engine, e.Kind)
	if e.Addr != "" {
		msg = fmt.Sprintf("%s connection to %s failed (%s)", e.Engine, e.Addr, e.Kind)
	}
	if hint, ok := hints[e.Kind]; ok {
		msg += ": " + hint
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// MySQL server and client error numbers.
var mysqlKinds = map[int]ConnectivityKind{
	1045: KindBadCredentials,
	1049: KindUnknownDatabase,
	2003: KindServerUnreachable,
	2005: KindServerUnreachable,
	2013: KindTimeout,
}

// Oracle listener and logon errors.
var oracleKinds = map[int]ConnectivityKind{
	1017:  KindBadCredentials,
	12154: KindUnknownDatabase,
	12514: KindUnknownDatabase,
	12541: KindServerUnreachable,
	12543: KindServerUnreachable,
	12170: KindTimeout,
}

var (
	oraCodePattern   = regexp.MustCompile(`ORA-(\d{5})`)
	mysqlCodePattern = regexp.MustCompile(`(?:Error|ERROR) (\d{4})`)
)

// Diagnose classifies a connection error. It returns nil for a nil error
// and the error itself if it is already a *ConnectivityError.
func Diagnose(engine, addr string, err error) *ConnectivityError {
	if err == nil {
		return nil
	}
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return ce
	}

	kind, code := classify(err)
	return &ConnectivityError{Kind: kind, Engine: engine, Addr: addr, Code: code, Err: err}
}

func classify(err error) (ConnectivityKind, int) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if kind, ok := mysqlKinds[int(myErr.Number)]; ok {
			return kind, int(myErr.Number)
		}
		return KindUnknown, int(myErr.Number)
	}

	if oraErr, ok := godror.AsOraErr(err); ok {
		if kind, ok := oracleKinds[oraErr.Code()]; ok {
			return kind, oraErr.Code()
		}
		return KindUnknown, oraErr.Code()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, 0
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) {
		return KindServerUnreachable, 0
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindServerUnreachable, 0
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindServerUnreachable, 0
	}

	// Some drivers only surface the code in the message.
	msg := err.Error()
	if m := oraCodePattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		if kind, ok := oracleKinds[code]; ok {
			return kind, code
		}
	}
	if m := mysqlCodePattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		if kind, ok := mysqlKinds[code]; ok {
			return kind, code
		}
	}
	if strings.Contains(strings.ToLower(msg), "connection refused") {
		return KindServerUnreachable, 0
	}
	return KindUnknown, 0
}
