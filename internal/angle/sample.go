package angle

// RawSample is one acquisition pass over every multiplexer bank: native
// 12-bit ADC counts (0-4095), bank-major, channel-minor. Treated as
// immutable once captured.
type RawSample []int

// Sample is a calibrated measurement vector in degrees, same length and
// ordering as the RawSample it was derived from.
type Sample []float64

// ADCResolutionBits is the converter resolution shared by both supported
// ADC back-ends (MCP3208 and ADS1015).
const ADCResolutionBits = 12

// ADCMaxCount is the largest raw reading the converter can produce.
const ADCMaxCount = 1<<ADCResolutionBits - 1
