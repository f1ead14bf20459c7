package wateruse

// NormalizeVolumes converts a time-sorted sequence of raw readings for one
// site into volume records expressed in cubic metres.
//
// Cumulative meter readings are differenced against the previous reading of
// the same measurement run; the first reading of each run has no prior value
// and is marked Unresolved. All other measurement kinds already report
// per-interval volumes and pass through unchanged.
func NormalizeVolumes(readings []Reading) []VolumeRecord {
	if len(readings) == 0 {
		return nil
	}

	records := make([]VolumeRecord, 0, len(readings))
	var (
		prevMeasurement string
		prevValue       float64
		havePrev        bool
	)

	for _, r := range readings {
		rec := VolumeRecord{
			Measurement: r.Measurement,
			Time:        r.Time,
			Date:        DateOf(r.Time),
		}

		if r.Kind.Cumulative() {
			// A run breaks whenever the measurement changes.
			if havePrev && prevMeasurement == r.Measurement {
				rec.Volume = r.Value - prevValue
			} else {
				rec.Unresolved = true
			}
			prevMeasurement = r.Measurement
			prevValue = r.Value
			havePrev = true
		} else {
			rec.Volume = r.Value
			havePrev = false
		}

		records = append(records, rec)
	}

	return records
}
