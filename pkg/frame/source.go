package frame

import (
	"fmt"
	"strings"

	"oracframe/pkg/contract"
)

// ObsID: (UT 日期前缀, 观测号)。
type ObsID struct {
	Prefix string
	Num    int
}

// Source: Configure 的输入，文件列表与观测号二选一。
type Source struct {
	Files []string
	Obs   *ObsID
}

// Files 以显式原始文件列表构造 Source。
func Files(names ...string) Source { return Source{Files: names} }

// Obs 以 (prefix, obsnum) 构造 Source。
func Obs(prefix string, num int) Source { return Source{Obs: &ObsID{Prefix: prefix, Num: num}} }

func (s Source) validate() error {
	switch {
	case len(s.Files) > 0 && s.Obs != nil:
		return fmt.Errorf("configure: both file list and observation given: %w", contract.ErrUsage)
	case len(s.Files) == 0 && s.Obs == nil:
		return fmt.Errorf("configure: no source given: %w", contract.ErrUsage)
	}
	for i, f := range s.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("configure: file %d is empty: %w", i, contract.ErrUsage)
		}
	}
	if s.Obs != nil && s.Obs.Num < 0 {
		return fmt.Errorf("configure: negative observation number %d: %w", s.Obs.Num, contract.ErrUsage)
	}
	return nil
}
