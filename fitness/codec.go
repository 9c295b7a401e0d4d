package fitness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tjwilli6/Fitness/generic"
)

// Row formats (comma-separated, no header):
//
//	calories: YYYY-MM-DD,consumed,goal,provisional(0|1)
//	weight:   YYYY-MM-DD,pounds
//	runs:     YYYY-MM-DD[THH:MM:SS],distance,elapsed_seconds

// CalorieCodec encodes calorie log rows.
type CalorieCodec struct{}

func (CalorieCodec) Key(r CalorieRecord) generic.TimePoint { return r.Date }

func (CalorieCodec) Encode(r CalorieRecord) string {
	flag := 0
	if r.IsProvisional() {
		flag = 1
	}
	return fmt.Sprintf("%s,%d,%d,%d", r.Date.Date(), r.Consumed, r.Goal, flag)
}

func (CalorieCodec) Decode(line string) (CalorieRecord, error) {
	f, err := fields(line, 4)
	if err != nil {
		return CalorieRecord{}, err
	}
	date, err := generic.ParseDate(f[0])
	if err != nil {
		return CalorieRecord{}, fmt.Errorf("date: %w", err)
	}
	consumed, err := parseTotal(f[1])
	if err != nil {
		return CalorieRecord{}, fmt.Errorf("consumed: %w", err)
	}
	goal, err := parseTotal(f[2])
	if err != nil {
		return CalorieRecord{}, fmt.Errorf("goal: %w", err)
	}
	var state RecordState
	switch f[3] {
	case "0":
		state = Final
	case "1":
		state = Provisional
	default:
		return CalorieRecord{}, fmt.Errorf("provisional flag must be 0 or 1, got %q", f[3])
	}
	return CalorieRecord{Date: date, Consumed: consumed, Goal: goal, State: state}, nil
}

func parseTotal(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < NoData {
		return 0, fmt.Errorf("%d is below the no-data sentinel", n)
	}
	return n, nil
}

// WeightCodec encodes weight log rows.
type WeightCodec struct{}

func (WeightCodec) Key(r WeightRecord) generic.TimePoint { return r.Date }

func (WeightCodec) Encode(r WeightRecord) string {
	return r.Date.Date().String() + "," + r.Pounds.String()
}

func (WeightCodec) Decode(line string) (WeightRecord, error) {
	f, err := fields(line, 2)
	if err != nil {
		return WeightRecord{}, err
	}
	date, err := generic.ParseDate(f[0])
	if err != nil {
		return WeightRecord{}, fmt.Errorf("date: %w", err)
	}
	lbs, err := decimal.NewFromString(f[1])
	if err != nil {
		return WeightRecord{}, fmt.Errorf("pounds: %w", err)
	}
	return WeightRecord{Date: date, Pounds: lbs}, nil
}

// RunCodec encodes run log rows.
type RunCodec struct{}

func (RunCodec) Key(r RunRecord) generic.TimePoint { return r.Start }

func (RunCodec) Encode(r RunRecord) string {
	return r.Start.String() + "," + formatFloat(r.Distance) + "," + formatFloat(r.ElapsedSeconds)
}

func (RunCodec) Decode(line string) (RunRecord, error) {
	f, err := fields(line, 3)
	if err != nil {
		return RunRecord{}, err
	}
	start, err := generic.ParseTimePoint(f[0])
	if err != nil {
		return RunRecord{}, fmt.Errorf("date: %w", err)
	}
	dist, err := parseFloat(f[1])
	if err != nil {
		return RunRecord{}, fmt.Errorf("distance: %w", err)
	}
	elapsed, err := parseFloat(f[2])
	if err != nil {
		return RunRecord{}, fmt.Errorf("elapsed: %w", err)
	}
	return RunRecord{Start: start, Distance: dist, ElapsedSeconds: elapsed}, nil
}

func fields(line string, n int) ([]string, error) {
	f := strings.Split(strings.TrimSpace(line), ",")
	if len(f) != n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(f))
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	return f, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
