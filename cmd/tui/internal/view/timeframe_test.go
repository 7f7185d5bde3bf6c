package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/status"
)

func TestTimeframe_Range(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		tf        Timeframe
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{tf: TimeframeThisMonth, wantStart: "2024-03-01", wantEnd: "2024-03-15", wantOK: true},
		{tf: TimeframeLastMonth, wantStart: "2024-02-01", wantEnd: "2024-02-29", wantOK: true},
		{tf: TimeframeLast90Days, wantStart: "2023-12-17", wantEnd: "2024-03-15", wantOK: true},
		{tf: TimeframeThisYear, wantStart: "2024-01-01", wantEnd: "2024-03-15", wantOK: true},
		{tf: TimeframeAll},
		{tf: TimeframeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end, ok := tt.tf.Range(now)

			assert.Equal(t, tt.wantOK, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.wantStart, start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, end.Format(time.DateOnly))
		})
	}
}

func TestTimeframePicker_Preset(t *testing.T) {
	p := NewTimeframePicker(TimeframeThisMonth)
	p.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)

	assert.Equal(t, "Last Month", msg.Label)
	require.NotNil(t, msg.Filter.StartDate)
	assert.Equal(t, "2024-02-01", msg.Filter.StartDate.Format(time.DateOnly))
}

func TestTimeframePicker_Custom(t *testing.T) {
	p := NewTimeframePicker(TimeframeCustom)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, p.custom)

	p.inputs[0].SetValue("2024-05-10")
	p.inputs[1].SetValue("2024-05-01")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.EqualError(t, p.err, "end date is before start date")

	p.inputs[1].SetValue("not-a-date")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.EqualError(t, p.err, "invalid end date, use YYYY-MM-DD")

	p.inputs[1].SetValue("2024-05-31")
	p, cmd = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.NoError(t, p.err)

	msg := cmd().(TimeframeSelectedMsg)
	assert.Equal(t, "2024-05-10 to 2024-05-31", msg.Label)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, p.custom)
}

func TestBridge(t *testing.T) {
	var b Bridge

	_, err := b.Phone(context.Background(), "Acme")
	assert.ErrorIs(t, err, errNoProgram)

	msgs := make(chan tea.Msg, 4)
	b.Attach(func(msg tea.Msg) { msgs <- msg })

	b.Notify(context.Background(), status.Notice{Kind: status.KindToast, Message: "done"})
	assert.Equal(t, NoticeMsg{Kind: status.KindToast, Message: "done"}, <-msgs)

	go func() {
		req := (<-msgs).(PhoneRequestMsg)
		req.reply <- phoneReply{phone: "+351 912 345 678"}
	}()

	phone, err := b.Phone(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "+351 912 345 678", phone)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	go func() { <-msgs }()

	_, err = b.Phone(ctx, "Acme")
	assert.ErrorIs(t, err, context.Canceled)
}
