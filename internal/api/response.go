package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError 按错误类型映射状态码，5xx 记日志
func respondError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrTeamNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnknownConference),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidPlayer):
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Errorf("%s failed", op)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// intQuery 读取整数参数并校验范围，缺省时返回 def
func intQuery(c *gin.Context, key string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s 须为 %d-%d 之间的整数", key, lo, hi)
	}
	return n, nil
}

// dateRangeQuery start_date/end_date（2006-01-02），都缺省时返回 nil
func dateRangeQuery(c *gin.Context) (*repository.DateRange, error) {
	var dr repository.DateRange
	for key, dst := range map[string]*time.Time{"start_date": &dr.From, "end_date": &dr.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := model.ParseGameDay(raw)
		if err != nil {
			return nil, err
		}
		*dst = t
	}
	if dr.From.IsZero() && dr.To.IsZero() {
		return nil, nil
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.To.Before(dr.From) {
		return nil, errors.New("end_date 不能早于 start_date")
	}
	return &dr, nil
}

func uintParam(c *gin.Context, key string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		badRequest(c, key+" 须为正整数")
		return 0, false
	}
	return n, true
}
