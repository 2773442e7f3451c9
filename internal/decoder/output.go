package decoder

// drainSaveBuffer copies any bits left over from a previous block's
// overflow into the head of this call's output buffers (spec.md §4.G: "On
// the next call, INIT begins by copying from the save buffer into the head
// of the new output buffer before resuming any new decoding"). It returns
// the byte/bit position the caller should continue writing fresh decode
// output from, and whether the call is fully satisfied by saved bits alone
// (in which case no FSM work should run this call at all).
func (d *Decoder) drainSaveBuffer(outputs [][]byte, budgetBytes int) (bufNdx, bitShift int, satisfied bool) {
	if d.savedBits == 0 {
		return 0, 0, false
	}

	requested := budgetBytes * BitsPerByte
	k := len(outputs)

	if requested < d.savedBits {
		// Fewer bits requested than available: copy exactly budgetBytes
		// worth starting at the saved read offset, and advance it.
		for m := 0; m < k; m++ {
			copyBytesFrom(outputs[m], d.saveBuffer[m], d.savedBitsStart, budgetBytes)
		}
		d.savedBitsStart += budgetBytes
		d.savedBits -= requested
		return budgetBytes, 0, true
	}

	// At least as many bits requested as available: drain the whole save
	// buffer and let the FSM continue filling whatever room remains.
	n := d.savedBits / BitsPerByte
	bit := d.savedBits % BitsPerByte
	copyN := n
	if bit != 0 {
		copyN++
	}
	for m := 0; m < k; m++ {
		copyBytesFrom(outputs[m], d.saveBuffer[m], d.savedBitsStart, copyN)
	}
	d.savedBits = 0
	d.savedBitsStart = 0
	return n, bit, false
}

func copyBytesFrom(dst, src []byte, srcStart, n int) {
	for i := 0; i < n; i++ {
		dst[i] = src[srcStart+i]
	}
}

// emitBlock performs the traceback/output layer (component G): it locates
// the terminal cell, walks the grid backward unpacking k-bit input labels
// into output bit streams, and spills whatever doesn't fit in the remaining
// output budget into the save buffer. Because traceback runs last-time to
// first-time while output is written first-to-last, it first computes the
// final bit position and fills backward from there toward bufNdx/bitShift.
func (d *Decoder) emitBlock(bufNdx, bitShift, budgetBytes int, outputs [][]byte) (nextBufNdx, nextBitShift int) {
	k := d.trellis.K()

	var t, s int
	if d.terminate {
		t, s = d.totalSteps, 0
	} else {
		t, s = d.blockBits, d.argmaxState()
	}

	// Skip the tail cells without extracting bits; they carry no
	// information (they are forced to input 0).
	if d.terminate {
		for i := 0; i < d.m; i++ {
			cell := d.gr.at(t, s)
			if !cell.valid {
				illegalState("traceback cell (%d,%d) was never written", t, s)
			}
			s = cell.prevState
			t--
		}
	}

	nextBufNdx = bufNdx + d.blockBits/BitsPerByte
	nextBitShift = bitShift + d.blockBits%BitsPerByte
	if nextBitShift >= BitsPerByte {
		nextBitShift -= BitsPerByte
		nextBufNdx++
	}

	remaining := d.blockBits
	writeNdx, writeShift := nextBufNdx, nextBitShift

	overflow := nextBufNdx > budgetBytes || (nextBufNdx == budgetBytes && nextBitShift != 0)

	zeroEnd := nextBufNdx
	if nextBitShift != 0 {
		zeroEnd++
	}
	if overflow {
		zeroEnd = budgetBytes
	}
	for m := 0; m < k; m++ {
		start := bufNdx
		if bitShift != 0 && bufNdx < zeroEnd {
			// Keep the bits already written below bitShift in this byte.
			outputs[m][bufNdx] &= byte(1<<uint(bitShift)) - 1
			start++
		}
		for i := start; i < zeroEnd; i++ {
			outputs[m][i] = 0
		}
	}

	if overflow {
		saveBufBytes := nextBufNdx - budgetBytes
		extraBits := saveBufBytes*BitsPerByte + nextBitShift
		d.savedBits = extraBits
		d.savedBitsStart = 0

		zeroBytes := saveBufBytes
		if nextBitShift != 0 {
			zeroBytes++
		}
		for m := 0; m < k; m++ {
			for i := 0; i < zeroBytes; i++ {
				d.saveBuffer[m][i] = 0
			}
		}

		saveNdx, saveShift := saveBufBytes, nextBitShift
		for n := 0; n < extraBits; n++ {
			saveShift--
			if saveShift < 0 {
				saveShift += BitsPerByte
				saveNdx--
			}
			cell := d.gr.at(t, s)
			if !cell.valid {
				illegalState("traceback cell (%d,%d) was never written", t, s)
			}
			input := cell.input
			for m := 0; m < k; m++ {
				if input&1 != 0 {
					d.saveBuffer[m][saveNdx] |= 1 << uint(saveShift)
				}
				input >>= 1
			}
			s = cell.prevState
			t--
		}

		remaining -= extraBits
		writeNdx, writeShift = budgetBytes, 0
		nextBufNdx, nextBitShift = budgetBytes, 0
	}

	for n := 0; n < remaining; n++ {
		writeShift--
		if writeShift < 0 {
			writeShift += BitsPerByte
			writeNdx--
		}
		cell := d.gr.at(t, s)
		if !cell.valid {
			illegalState("traceback cell (%d,%d) was never written", t, s)
		}
		input := cell.input
		for m := 0; m < k; m++ {
			if input&1 != 0 {
				outputs[m][writeNdx] |= 1 << uint(writeShift)
			}
			input >>= 1
		}
		s = cell.prevState
		t--
	}

	return nextBufNdx, nextBitShift
}

// argmaxState picks the best-metric state at the current "from" side for
// the non-terminating case (spec.md Q2: best-state selection is mandated,
// not a bug).
func (d *Decoder) argmaxState() int {
	from := d.metrics.from()
	best := 0
	bestMetric := from[0].metric
	for i := 1; i < len(from); i++ {
		if from[i].metric > bestMetric {
			bestMetric = from[i].metric
			best = i
		}
	}
	return best
}
