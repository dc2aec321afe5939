package header

import "strings"

// Prefix 为规范头在导出视图中的统一前缀。
const Prefix = "ORAC_"

// 规范头词表（与仪器无关的语义键）。
const (
	AirmassStart       = "AIRMASS_START"
	AirmassEnd         = "AIRMASS_END"
	ConfigurationIndex = "CONFIGURATION_INDEX"
	DecBase            = "DEC_BASE"
	DecScale           = "DEC_SCALE"
	DecTelescopeOffset = "DEC_TELESCOPE_OFFSET"
	DetectorReadType   = "DETECTOR_READ_TYPE"
	ExposureTime       = "EXPOSURE_TIME"
	Filter             = "FILTER"
	Gain               = "GAIN"
	Instrument         = "INSTRUMENT"
	NumberOfExposures  = "NUMBER_OF_EXPOSURES"
	Object             = "OBJECT"
	ObservationMode    = "OBSERVATION_MODE"
	ObservationNumber  = "OBSERVATION_NUMBER"
	ObservationType    = "OBSERVATION_TYPE"
	RABase             = "RA_BASE"
	RAScale            = "RA_SCALE"
	RATelescopeOffset  = "RA_TELESCOPE_OFFSET"
	Recipe             = "RECIPE"
	RestFrequency      = "REST_FREQUENCY"
	Rotation           = "ROTATION"
	SpeedGain          = "SPEED_GAIN"
	Standard           = "STANDARD"
	UTDate             = "UTDATE"
	UTStart            = "UTSTART"
	UTEnd              = "UTEND"
	XLowerBound        = "X_LOWER_BOUND"
	XUpperBound        = "X_UPPER_BOUND"
	YLowerBound        = "Y_LOWER_BOUND"
	YUpperBound        = "Y_UPPER_BOUND"
	XReferencePixel    = "X_REFERENCE_PIXEL"
	YReferencePixel    = "Y_REFERENCE_PIXEL"
)

// Vocabulary 列出全部规范键（目录校验 direct 映射时使用）。
var Vocabulary = []string{
	AirmassStart, AirmassEnd, ConfigurationIndex, DecBase, DecScale, DecTelescopeOffset,
	DetectorReadType, ExposureTime, Filter, Gain, Instrument, NumberOfExposures,
	Object, ObservationMode, ObservationNumber, ObservationType, RABase, RAScale,
	RATelescopeOffset, Recipe, RestFrequency, Rotation, SpeedGain, Standard,
	UTDate, UTStart, UTEnd, XLowerBound, XUpperBound, YLowerBound, YUpperBound,
	XReferencePixel, YReferencePixel,
}

// Known 判断 key（可带 ORAC_ 前缀）是否属于规范词表。
func Known(key string) bool {
	key = Bare(key)
	for _, k := range Vocabulary {
		if k == key {
			return true
		}
	}
	return false
}

// Bare 去掉可选的 ORAC_ 前缀。
func Bare(key string) string { return strings.TrimPrefix(key, Prefix) }

// Canonical: 规范头集合。键为不带前缀的词表项；某键要么有派生值，要么缺省。
type Canonical map[string]any

// Get 按规范键读取（接受带或不带 ORAC_ 前缀）。
func (c Canonical) Get(key string) (any, bool) {
	v, ok := c[Bare(key)]
	return v, ok
}

// Raw 以 Raw 视图访问，复用类型化读取器。
func (c Canonical) Raw() Raw { return Raw(c) }

// Prefixed 返回带 ORAC_ 前缀的导出副本。
func (c Canonical) Prefixed() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[Prefix+k] = v
	}
	return out
}
