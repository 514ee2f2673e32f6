package datalog

// VREF is the ADC reference of the logger board in millivolts.
const VREF = 1650

// VoltageFromADC converts a 10-bit ADC code to hundredths of a volt. Only the
// low byte of the result is kept, as in the record format.
func VoltageFromADC(code uint16, vrefMV uint32) uint8 {
	sample := uint32(code) * (vrefMV / 10)
	return uint8(sample >> 10)
}

// TemperatureFromADC converts a temperature-sensor ADC code to degrees
// Celsius using the sensor slope of 0.248 degC/mV and an offset of 231 degC.
func TemperatureFromADC(code uint16, vrefMV uint32) int8 {
	sample := uint32(code) * ((vrefMV * 64 * 248) / 1000)
	return int8(int16(sample>>16) - 231)
}
