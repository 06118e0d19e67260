package get_schedule_bookings

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/bookings/models"
)

var errMissingDate = errors.New("date is required")

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(callerID int64, dateStr, machineIDStr, statusStr string) (*models.GetScheduleRequest, error) {
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &models.GetScheduleRequest{
		CallerID: callerID,
		Date:     date,
	}

	// Парсим machineId если указан
	if machineIDStr != "" {
		machineID, err := strconv.ParseInt(machineIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.MachineID = &machineID
	}

	if statusStr != "" {
		status := strings.ToUpper(statusStr)
		req.Status = &status
	}

	return req, nil
}
