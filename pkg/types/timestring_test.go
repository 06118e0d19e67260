package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "обычное время", input: "07:30", want: "07:30"},
		{name: "формат postgres TIME", input: "17:00:00", want: "17:00"},
		{name: "граница суток", input: "24:00", want: "24:00"},
		{name: "часы вне диапазона", input: "25:00", wantErr: true},
		{name: "минуты вне диапазона", input: "10:60", wantErr: true},
		{name: "24 с минутами", input: "24:30", wantErr: true},
		{name: "без ведущего нуля", input: "7:30", wantErr: true},
		{name: "буквы", input: "ab:cd", wantErr: true},
		{name: "пустая строка", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("16:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("17:00"), got)

	got, err = TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = TimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:30"))
	assert.False(t, TimeString("09:30").IsBefore("09:30"))
	assert.True(t, TimeString("10:00").IsAfter("09:59"))
	assert.True(t, TimeString("09:00").Equal("09:00"))
	assert.Equal(t, 570, TimeString("09:30").Minutes())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("09:30:00")))
	assert.Equal(t, TimeString("09:30"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("18:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
