package header

// Set: 两级头结构。
//   - Primary: 容器级（管理组件 HEADER / 主 HDU）头；
//   - Subs:    按子帧顺序排列的子帧头（与 SubFrameSet 一一对应）。
//
// 合并优先级：Primary > 所有子帧一致的键；子帧间取值不同的键只留在 Subs。
type Set struct {
	Primary Raw
	Subs    []Raw
}

// Merged 返回合并视图（新建 map，不影响原数据）。
func (s Set) Merged() Raw {
	out := Raw{}
	if len(s.Subs) > 0 {
		first := s.Subs[0]
		for k, v := range first {
			common := true
			for _, sub := range s.Subs[1:] {
				w, ok := sub[k]
				if !ok || !Equal(v, w) {
					common = false
					break
				}
			}
			if common {
				out[k] = v
			}
		}
	}
	for k, v := range s.Primary {
		out[k] = v
	}
	return out
}

// Sub 返回第 i 个子帧头（0 起）；越界返回 nil。
func (s Set) Sub(i int) Raw {
	if i < 0 || i >= len(s.Subs) {
		return nil
	}
	return s.Subs[i]
}

// Empty 判断是否无任何头信息。
func (s Set) Empty() bool {
	if len(s.Primary) > 0 {
		return false
	}
	for _, sub := range s.Subs {
		if len(sub) > 0 {
			return false
		}
	}
	return true
}
