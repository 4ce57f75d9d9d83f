package matrix

// Slot timing constants, in timer ticks. PWM bit 0 is displayed for baseTicks
// and every following bit doubles that, so the table fits a 16-bit timer word
// up to maxPWMBits.
const (
	baseTicks  = 8 // duration of the shortest (bit 0) slot
	blankTicks = 4 // output-enable blanking window at the head of each slot
)

// buildAddressTable returns the row-select code for every (row, PWM-bit) slot
// in cycling order, rows outer and bits inner, plus one terminal entry that
// returns the mux to row 0 between cycles. Length is pwmBits*rows + 1.
func buildAddressTable(rows, pwmBits int) []uint8 {
	table := make([]uint8, pwmBits*rows+1)
	for row := 0; row < rows; row++ {
		for bit := 0; bit < pwmBits; bit++ {
			table[row*pwmBits+bit] = uint8(row)
		}
	}
	table[len(table)-1] = 0
	return table
}

// buildTimerTables returns the period and compare values for every slot of
// the address table. The slot for PWM bit b runs baseTicks<<b ticks with the
// output enabled after the blanking window; the terminal sentinel runs one
// base period with the output held off.
func buildTimerTables(rows, pwmBits int) (period, match []uint16) {
	period = make([]uint16, pwmBits*rows+1)
	match = make([]uint16, pwmBits*rows+1)
	for row := 0; row < rows; row++ {
		for bit := 0; bit < pwmBits; bit++ {
			i := row*pwmBits + bit
			period[i] = baseTicks << bit
			match[i] = period[i] - blankTicks
		}
	}
	period[len(period)-1] = baseTicks
	match[len(match)-1] = 0
	return period, match
}
