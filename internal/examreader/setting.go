package examreader

import (
	"strconv"
	"strings"

	"github.com/pavelanni/randomizer/internal/model"
)

// SettingKeys lists the keys recognised in a setting block, in field order.
var SettingKeys = []string{
	"university",
	"department",
	"term",
	"coursecode",
	"examname",
	"examdate",
	"timeallowed",
	"numberofvestions",
	"groups",
}

// ParseSetting reads "key = value" lines. A leading "%" comment marker is
// stripped from each line, a line without "=" is a key with an empty value and
// unknown keys are ignored.
func ParseSetting(block string) model.ExamSetting {
	var s model.ExamSetting
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "%"))
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		s = ApplySetting(s, strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return s
}

// ApplySetting returns s with the field named by key set to value.
func ApplySetting(s model.ExamSetting, key, value string) model.ExamSetting {
	switch key {
	case "university":
		s.University = value
	case "department":
		s.Department = value
	case "term":
		s.Term = value
	case "coursecode":
		s.CourseCode = value
	case "examname":
		s.ExamName = value
	case "examdate":
		s.ExamDate = value
	case "timeallowed":
		s.TimeAllowed = value
	case "numberofvestions", "numberofversions":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			n = 0
		}
		s.NumberOfVersions = uint32(n)
	case "groups":
		s.Groups = value
	}
	return s
}

// SettingValue looks a field up by key. Unknown keys fail with a Redaction
// error.
func SettingValue(s model.ExamSetting, key string) (string, error) {
	switch key {
	case "university":
		return s.University, nil
	case "department":
		return s.Department, nil
	case "term":
		return s.Term, nil
	case "coursecode":
		return s.CourseCode, nil
	case "examname":
		return s.ExamName, nil
	case "examdate":
		return s.ExamDate, nil
	case "timeallowed":
		return s.TimeAllowed, nil
	case "numberofvestions", "numberofversions":
		return strconv.FormatUint(uint64(s.NumberOfVersions), 10), nil
	case "groups":
		return s.Groups, nil
	}
	return "", &Error{Kind: KindRedaction, Msg: key}
}
