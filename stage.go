package plotexp

import (
	"reflect"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Stage runs fn and logs how long it took. An empty name is replaced by the
// name of fn.
func Stage(log logrus.FieldLogger, name string, fn func() error) error {
	if name == "" {
		name = GetFunctionName(fn)
	}
	var startPoint = time.Now()
	var err = fn()
	var entry = log.WithFields(logrus.Fields{"stage": name, "took": time.Since(startPoint)})
	if err != nil {
		entry.WithError(err).Error("stage failed")
		return err
	}
	entry.Info("stage done")
	return nil
}

func GetFunctionName(i interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}
