package translate

import (
	"math"
	"strconv"
	"strings"

	"oracframe/pkg/header"
)

const rtod = 180 / math.Pi

// utHeaders: UTDATE 取自 UTDATE/IDATE；UTSTART/UTEND 为十进制小时。
func utHeaders(raw header.Raw, out header.Canonical, _ *Constants) {
	for _, k := range []string{"UTDATE", "IDATE"} {
		if d, ok := utDate(raw[k]); ok {
			out[header.UTDate] = d
			break
		}
	}
	if h, ok := hours(raw["UTSTART"]); ok {
		out[header.UTStart] = h
	}
	if h, ok := hours(raw["UTEND"]); ok {
		out[header.UTEnd] = h
	}
	endFallback(raw, out)
}

// utDateObs: 按固定字符偏移解码 "YYYY-MM-DDThh:mm:ss[.s]"。
func utDateObs(raw header.Raw, out header.Canonical, c *Constants) {
	if s, ok := raw.String(c.dateKey()); ok {
		if d, ok := stampDate(s); ok {
			out[header.UTDate] = d
		}
		if h, ok := stampHours(s); ok {
			out[header.UTStart] = h
		}
	}
	if s, ok := raw.String(c.endKey()); ok {
		if h, ok := stampHours(s); ok {
			out[header.UTEnd] = h
		}
	}
	endFallback(raw, out)
}

// endFallback: 仅有开始时刻时，UTEND ≈ UTSTART + 曝光/3600。
func endFallback(raw header.Raw, out header.Canonical) {
	if _, ok := out[header.UTEnd]; ok {
		return
	}
	start, ok := header.ToFloat(out[header.UTStart])
	if !ok {
		return
	}
	exp, ok := header.ToFloat(out[header.ExposureTime])
	if !ok {
		if exp, ok = raw.Float("EXPTIME"); !ok {
			return
		}
	}
	out[header.UTEnd] = start + exp/3600
}

// utDate 接受整数 YYYYMMDD 或含分隔符的 "YYYY-MM-DD" / "YYYY:MM:DD"。
func utDate(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if _, isStr := v.(string); !isStr {
		if f, ok := header.ToFloat(v); ok && f >= 10000101 {
			return int(f), true
		}
	}
	s := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, header.ToString(v))
	if len(s) < 8 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:8])
	if err != nil {
		return 0, false
	}
	return n, true
}

// hours 接受十进制小时或 "hh:mm:ss[.s]"。
func hours(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok && strings.Contains(s, ":") {
		parts := strings.Split(strings.TrimSpace(s), ":")
		if len(parts) != 3 {
			return 0, false
		}
		var f [3]float64
		for i, p := range parts {
			x, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, false
			}
			f[i] = x
		}
		return f[0] + f[1]/60 + f[2]/3600, true
	}
	return header.ToFloat(v)
}

func stampDate(s string) (int, bool) {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return 0, false
	}
	n, err := strconv.Atoi(s[0:4] + s[5:7] + s[8:10])
	if err != nil {
		return 0, false
	}
	return n, true
}

func stampHours(s string) (float64, bool) {
	if len(s) < 19 || (s[10] != 'T' && s[10] != ' ') || s[13] != ':' || s[16] != ':' {
		return 0, false
	}
	h, err1 := strconv.Atoi(s[11:13])
	m, err2 := strconv.Atoi(s[14:16])
	sec, err3 := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s[17:]), "Z"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(h) + float64(m)/60 + sec/3600, true
}

// rawBounds 读取探测器读出区：RDOUT_X1..Y2，或 DETSEC "[x1:x2,y1:y2]"。
func rawBounds(raw header.Raw) ([4]int, bool) {
	var b [4]int
	all := true
	for i, k := range []string{"RDOUT_X1", "RDOUT_X2", "RDOUT_Y1", "RDOUT_Y2"} {
		v, ok := raw.Int(k)
		if !ok {
			all = false
			break
		}
		b[i] = v
	}
	if all {
		return b, true
	}
	s, ok := raw.String("DETSEC")
	if !ok {
		return b, false
	}
	s = strings.Trim(s, "[] ")
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return b, false
	}
	for i, axis := range xy {
		lim := strings.Split(axis, ":")
		if len(lim) != 2 {
			return b, false
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(lim[0]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(lim[1]))
		if err1 != nil || err2 != nil {
			return b, false
		}
		b[2*i], b[2*i+1] = lo, hi
	}
	return b, true
}

func bounds(raw header.Raw, out header.Canonical, c *Constants) {
	b, ok := rawBounds(raw)
	if !ok {
		b = c.bounds()
	}
	out[header.XLowerBound] = b[0]
	out[header.XUpperBound] = b[1]
	out[header.YLowerBound] = b[2]
	out[header.YUpperBound] = b[3]
}

// referencePixel 逐轴：CRPIXn 在界内则用之；否则取原始读出区中点；否则常量。
func referencePixel(raw header.Raw, out header.Canonical, c *Constants) {
	lim := c.bounds()
	for i, k := range []string{header.XLowerBound, header.XUpperBound, header.YLowerBound, header.YUpperBound} {
		if v, ok := header.ToFloat(out[k]); ok {
			lim[i] = int(v)
		}
	}
	det, haveDet := rawBounds(raw)
	fallback := func(axis int) float64 {
		if len(c.RefPixel) == 2 {
			return c.RefPixel[axis]
		}
		cb := c.bounds()
		return math.Round(float64(cb[2*axis]+cb[2*axis+1]) / 2)
	}
	for axis, key := range []string{"CRPIX1", "CRPIX2"} {
		lo, hi := float64(lim[2*axis]), float64(lim[2*axis+1])
		var ref float64
		if v, ok := raw.Float(key); ok && v >= lo && v <= hi {
			ref = v
		} else if haveDet {
			ref = math.Round(float64(det[2*axis]+det[2*axis+1]) / 2)
		} else {
			ref = fallback(axis)
		}
		if axis == 0 {
			out[header.XReferencePixel] = ref
		} else {
			out[header.YReferencePixel] = ref
		}
	}
}

func cdMatrix(raw header.Raw) (cd11, cd12, cd21, cd22 float64, ok bool) {
	var v [4]float64
	for i, k := range []string{"CD1_1", "CD1_2", "CD2_1", "CD2_2"} {
		f, has := raw.Float(k)
		if !has {
			return 0, 0, 0, 0, false
		}
		v[i] = f
	}
	return v[0], v[1], v[2], v[3], true
}

// CDelt 由 CD 矩阵求两轴尺度（度/像元），行列式为负时取负号。
func CDelt(cd11, cd12, cd21, cd22 float64) (float64, float64) {
	sgn := 1.0
	if cd11*cd22-cd12*cd21 < 0 {
		sgn = -1
	}
	return sgn * math.Sqrt(cd11*cd11+cd21*cd21), sgn * math.Sqrt(cd22*cd22+cd12*cd12)
}

// Rotation 返回 CD 矩阵的旋转角（度）：两列各给一个 atan2 估计，取平均。
// 第一列按行列式符号归一，第二列恒为正手性轴。
func Rotation(cd11, cd12, cd21, cd22 float64) float64 {
	sgn := 1.0
	if cd11*cd22-cd12*cd21 < 0 {
		sgn = -1
	}
	est1 := math.Atan2(sgn*cd21, sgn*cd11)
	est2 := math.Atan2(-cd12, cd22)
	return rtod * 0.5 * (est1 + est2)
}

func cdRotation(raw header.Raw, out header.Canonical, _ *Constants) {
	if cd11, cd12, cd21, cd22, ok := cdMatrix(raw); ok {
		out[header.Rotation] = Rotation(cd11, cd12, cd21, cd22)
		return
	}
	if v, ok := raw.Float("CROTA2"); ok {
		out[header.Rotation] = v
		return
	}
	out[header.Rotation] = 0.0
}

// scale: 角秒/像元。CDELT → CD → PIXELSIZE → 查表 → 缺省。
func scale(raw header.Raw, out header.Canonical, c *Constants) {
	set := func(ra, dec float64) {
		out[header.RAScale] = ra
		out[header.DecScale] = dec
	}
	if d1, ok1 := raw.Float("CDELT1"); ok1 {
		if d2, ok2 := raw.Float("CDELT2"); ok2 {
			set(d1*3600, d2*3600)
			return
		}
	}
	if cd11, cd12, cd21, cd22, ok := cdMatrix(raw); ok {
		d1, d2 := CDelt(cd11, cd12, cd21, cd22)
		set(d1*3600, d2*3600)
		return
	}
	if p, ok := raw.Float("PIXELSIZE"); ok && p != 0 {
		set(-math.Abs(p), math.Abs(p))
		return
	}
	if c.ScaleKey != "" {
		if k, ok := raw.String(c.ScaleKey); ok {
			if p, ok := c.PixelScales[k]; ok {
				set(-math.Abs(p), math.Abs(p))
				return
			}
		}
	}
	set(c.scales())
}

func basePosition(raw header.Raw, out header.Canonical, c *Constants) {
	if ra, ok := raw.Float("RABASE"); ok {
		if c.RAHours {
			ra *= 15
		}
		out[header.RABase] = ra
	}
	if dec, ok := raw.Float("DECBASE"); ok {
		out[header.DecBase] = dec
	}
}

// telescopeOffsets: 优先 TRAOFF/TDECOFF；否则由当前位置与基准位置之差（角秒）重建。
func telescopeOffsets(raw header.Raw, out header.Canonical, c *Constants) {
	raOff, okRA := raw.Float("TRAOFF")
	decOff, okDec := raw.Float("TDECOFF")
	if !okRA || !okDec {
		ra, ok1 := raw.Float("RA")
		dec, ok2 := raw.Float("DEC")
		rab, ok3 := raw.Float("RABASE")
		decb, ok4 := raw.Float("DECBASE")
		if ok1 && ok2 && ok3 && ok4 {
			if c.RAHours {
				ra, rab = ra*15, rab*15
			}
			if !okRA {
				raOff, okRA = (ra-rab)*3600*math.Cos(dec/rtod), true
			}
			if !okDec {
				decOff, okDec = (dec-decb)*3600, true
			}
		}
	}
	if okRA {
		out[header.RATelescopeOffset] = raOff
	}
	if okDec {
		out[header.DecTelescopeOffset] = decOff
	}
}

// epochKeys: 原始键名在某 UT 日期改名；按日期直接选键，不做试探查找。
// UT 日期未知时视为新纪元。
func epochKeys(raw header.Raw, out header.Canonical, c *Constants) {
	date, known := utDate(out[header.UTDate])
	if !known {
		date, known = utDate(raw["UTDATE"])
	}
	for _, e := range c.Epochs {
		key := e.After
		if known && date < e.Threshold {
			key = e.Before
		}
		if v, ok := raw[key]; ok && v != nil {
			out[header.Bare(e.Key)] = scalar(v)
		}
	}
}
