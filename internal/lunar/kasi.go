package lunar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "gogwan-api/internal/errors"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/saju"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	kasiLunarPath = "/getLunCalInfo"
	kasiSolarPath = "/getSolCalInfo"

	kasiLeap   = "윤"
	kasiNormal = "평"

	kasiResultOK = "00"
)

// KASI 韩国天文研究院（한국천문연구원）阴阳历信息接口
type KASI struct {
	client     *resty.Client
	baseURL    string
	serviceKey string
}

// NewKASI 创建 KASI 转换器；serviceKey 用解码后的原始值，由 resty 负责转义
func NewKASI(client *resty.Client, baseURL, serviceKey string) *KASI {
	return &KASI{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
	}
}

// flexInt KASI 的数字字段有时是字符串（"08"），有时是数字
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("kasi: bad number %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

type kasiItem struct {
	LunYear      flexInt `json:"lunYear"`
	LunMonth     flexInt `json:"lunMonth"`
	LunDay       flexInt `json:"lunDay"`
	LunLeapmonth string  `json:"lunLeapmonth"`
	SolYear      flexInt `json:"solYear"`
	SolMonth     flexInt `json:"solMonth"`
	SolDay       flexInt `json:"solDay"`
}

// kasiItems 无结果时 items 是空字符串；单条是对象，多条是数组
type kasiItems struct {
	Item []kasiItem
}

func (k *kasiItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte(`""`)) || bytes.Equal(data, []byte("null")) {
		k.Item = nil
		return nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := sonic.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	raw := bytes.TrimSpace(wrapper.Item)
	switch {
	case len(raw) == 0:
		k.Item = nil
	case raw[0] == '[':
		return sonic.Unmarshal(raw, &k.Item)
	default:
		var one kasiItem
		if err := sonic.Unmarshal(raw, &one); err != nil {
			return err
		}
		k.Item = []kasiItem{one}
	}
	return nil
}

type kasiResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      kasiItems `json:"items"`
			TotalCount int       `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// SolarToLunar 公历转农历
func (k *KASI) SolarToLunar(ctx context.Context, d saju.SolarDate) (saju.LunarDate, error) {
	if err := d.Check(); err != nil {
		return saju.LunarDate{}, err
	}

	item, err := k.query(ctx, kasiLunarPath, map[string]string{
		"solYear":  fmt.Sprintf("%04d", d.Year),
		"solMonth": fmt.Sprintf("%02d", d.Month),
		"solDay":   fmt.Sprintf("%02d", d.Day),
	})
	if err != nil {
		return saju.LunarDate{}, err
	}
	if item == nil {
		return saju.LunarDate{}, fmt.Errorf("%w: kasi has no lunar date for %s", saju.ErrInvalidDate, d)
	}

	return saju.LunarDate{
		Year:  int(item.LunYear),
		Month: int(item.LunMonth),
		Day:   int(item.LunDay),
		Leap:  item.LunLeapmonth == kasiLeap,
	}, nil
}

// LunarToSolar 农历转公历
func (k *KASI) LunarToSolar(ctx context.Context, d saju.LunarDate) (saju.SolarDate, error) {
	if err := d.CheckShape(); err != nil {
		return saju.SolarDate{}, err
	}

	leap := kasiNormal
	if d.Leap {
		leap = kasiLeap
	}
	item, err := k.query(ctx, kasiSolarPath, map[string]string{
		"lunYear":   fmt.Sprintf("%04d", d.Year),
		"lunMonth":  fmt.Sprintf("%02d", d.Month),
		"lunDay":    fmt.Sprintf("%02d", d.Day),
		"leapMonth": leap,
	})
	if err != nil {
		return saju.SolarDate{}, err
	}
	if item == nil {
		return saju.SolarDate{}, fmt.Errorf("%w: kasi has no solar date for lunar %s", saju.ErrInvalidDate, d)
	}

	out := saju.SolarDate{Year: int(item.SolYear), Month: int(item.SolMonth), Day: int(item.SolDay)}
	if err := out.Check(); err != nil {
		return saju.SolarDate{}, err
	}
	return out, nil
}

// query 调用接口并返回第一条记录；无记录时返回 nil
func (k *KASI) query(ctx context.Context, path string, params map[string]string) (*kasiItem, error) {
	resp, err := k.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("ServiceKey", k.serviceKey).
		SetQueryParam("_type", "json").
		Get(k.baseURL + path)
	if err != nil {
		logger.Error("KASI 请求失败", zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewRequestFailedError("KASI 음양력 API", err)
	}

	var body kasiResponse
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		return nil, apperrors.NewRequestFailedError("KASI 응답 파싱", err)
	}

	header := body.Response.Header
	if header.ResultCode != kasiResultOK {
		return nil, apperrors.NewRequestFailedError("KASI "+header.ResultMsg,
			fmt.Errorf("kasi result code %s", header.ResultCode))
	}

	items := body.Response.Body.Items.Item
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}
