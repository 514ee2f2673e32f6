package main

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// glogger adapts glog to flash.Logger. Debug messages need -v=2.
type glogger struct{}

func (glogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(2) {
		glog.Info(format(msg, keysAndValues))
	}
}

func (glogger) Info(msg string, keysAndValues ...interface{}) {
	glog.Info(format(msg, keysAndValues))
}

func (glogger) Error(msg string, keysAndValues ...interface{}) {
	glog.Error(format(msg, keysAndValues))
}

// format renders a message with key-value pairs as "msg k1=v1 k2=v2".
// A trailing key without a value is printed alone.
func format(msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "=%v", keysAndValues[i+1])
		}
	}
	return b.String()
}
