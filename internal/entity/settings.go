package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
)

const (
	defaultRows    = 6
	defaultCols    = 7
	defaultTarget  = 4
	defaultPlayers = 2
)

// PlayerColors are the In A Row marks, handed out in this order.
var PlayerColors = []string{"yellow", "red", "orange", "blue", "green", "magenta"}

// MaxPlayers is bounded by the number of distinct colours.
var MaxPlayers = len(PlayerColors)

// MaxSide bounds rows, cols and target of a game.
const MaxSide = 100

var settingsSeparators = []string{"-", " ", ",", "\t", ":"}

type Settings struct {
	Rows    int `json:"rows"`
	Cols    int `json:"cols"`
	Target  int `json:"target"`
	Players int `json:"players"`
}

func DefaultSettings() Settings {
	return Settings{
		Rows:    defaultRows,
		Cols:    defaultCols,
		Target:  defaultTarget,
		Players: defaultPlayers,
	}
}

func (that Settings) Validate() error {
	if that.Rows < 1 || that.Cols < 1 {
		return fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidSettings, that.Rows, that.Cols)
	}

	if that.Rows > MaxSide || that.Cols > MaxSide {
		return fmt.Errorf("%w: board %dx%d, max side %d", apperror.ErrInvalidSettings, that.Rows, that.Cols, MaxSide)
	}

	if that.Target < 1 || that.Target > MaxSide {
		return fmt.Errorf("%w: target %d", apperror.ErrInvalidSettings, that.Target)
	}

	if that.Players < 1 {
		return fmt.Errorf("%w: players %d", apperror.ErrInvalidSettings, that.Players)
	}

	if that.Players > MaxPlayers {
		return fmt.Errorf("%w: max %d players", apperror.ErrTooManyPlayers, MaxPlayers)
	}

	return nil
}

func (that Settings) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", that.Rows, that.Cols, that.Target, that.Players)
}

// ParseSettings reads "rows-cols[-target[-players]]". Any of - space , tab :
// may separate the parts; the first separator yielding a valid form wins.
func ParseSettings(text string) (Settings, error) {
	text = strings.TrimSpace(text)

	for _, sep := range settingsSeparators {
		bits := strings.Split(text, sep)
		if len(bits) == 2 {
			bits = append(bits, strconv.Itoa(defaultTarget))
		}
		if len(bits) == 3 {
			bits = append(bits, strconv.Itoa(defaultPlayers))
		}
		if len(bits) != 4 {
			continue
		}

		values, ok := parseDigits(bits)
		if !ok {
			continue
		}

		settings := Settings{Rows: values[0], Cols: values[1], Target: values[2], Players: values[3]}
		if err := settings.Validate(); err != nil {
			return Settings{}, err
		}

		return settings, nil
	}

	return Settings{}, fmt.Errorf("%w: %q", apperror.ErrInvalidSettings, text)
}

func parseDigits(bits []string) ([]int, bool) {
	values := make([]int, 0, len(bits))
	for _, bit := range bits {
		if bit == "" || strings.IndexFunc(bit, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return nil, false
		}

		value, err := strconv.Atoi(bit)
		if err != nil {
			return nil, false
		}
		values = append(values, value)
	}

	return values, true
}
