package handler

import (
	"strconv"

	"go.uber.org/zap"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
