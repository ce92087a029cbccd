package service

import (
	"testing"

	"team_collab_backend/internal/model"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		name string
		from model.MeetingStatus
		to   model.MeetingStatus
		want bool
	}{
		{"scheduled 可以进行", model.MeetingScheduled, model.MeetingOccurred, true},
		{"scheduled 可以取消", model.MeetingScheduled, model.MeetingCancelled, true},
		{"occurred 是终态", model.MeetingOccurred, model.MeetingCancelled, false},
		{"occurred 不能回退", model.MeetingOccurred, model.MeetingScheduled, false},
		{"cancelled 是终态", model.MeetingCancelled, model.MeetingOccurred, false},
		{"cancelled 不能回退", model.MeetingCancelled, model.MeetingScheduled, false},
		{"不能原地转移到 scheduled", model.MeetingScheduled, model.MeetingScheduled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
