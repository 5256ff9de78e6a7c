package reading

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/zhouzirui/z-bazi/backend/internal/analysis/instant"
	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

// BirthRequest 是前端提交的出生信息。
// Date/Time 为两个选择器各自的取值；也可直接提交 birthISO（yyyy-MM-ddTHH:mm:ss）。
type BirthRequest struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	BirthISO       string `json:"birthISO,omitempty"`
	Timezone       string `json:"timezone"`
	DeviceTimezone string `json:"deviceTimezone,omitempty"`
	Gender         string `json:"gender"`
}

// BirthRequestFromQuery 从查询参数读取出生信息。
func BirthRequestFromQuery(q url.Values) BirthRequest {
	return BirthRequest{
		Date:           q.Get("date"),
		Time:           q.Get("time"),
		BirthISO:       q.Get("birthISO"),
		Timezone:       q.Get("timezone"),
		DeviceTimezone: q.Get("deviceTimezone"),
		Gender:         q.Get("gender"),
	}
}

// Inputs 校验请求并转换为流水线输入。
func (req BirthRequest) Inputs() (pipeline.BirthInputs, error) {
	zone, err := instant.LoadZone(req.Timezone)
	if err != nil {
		return pipeline.BirthInputs{}, err
	}

	device := zone
	if strings.TrimSpace(req.DeviceTimezone) != "" {
		if device, err = instant.LoadZone(req.DeviceTimezone); err != nil {
			return pipeline.BirthInputs{}, fmt.Errorf("deviceTimezone: %w", err)
		}
	}

	gender, err := bazi.ParseGender(req.Gender)
	if err != nil {
		return pipeline.BirthInputs{}, err
	}

	var date, clock time.Time
	if strings.TrimSpace(req.BirthISO) != "" {
		birth, err := instant.ParseStamp(req.BirthISO, zone)
		if err != nil {
			return pipeline.BirthInputs{}, err
		}
		date, clock, device = birth, birth, zone
	} else {
		if date, err = instant.ParsePickerDate(req.Date, device); err != nil {
			return pipeline.BirthInputs{}, err
		}
		if clock, err = instant.ParsePickerTime(req.Time, device); err != nil {
			return pipeline.BirthInputs{}, err
		}
	}

	return pipeline.BirthInputs{
		CalendarDate: date,
		WallTime:     clock,
		Timezone:     zone,
		DeviceZone:   device,
		Gender:       gender,
	}, nil
}
