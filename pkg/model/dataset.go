package model

// Dataset is an ordered sequence of records plus the column names that
// were present in the input schema. Order is encounter order and is
// preserved through cleaning.
type Dataset struct {
	Columns []string
	Records []Record
}

// NewDataset builds a dataset over the given records with the full raw
// schema. Use this for programmatically constructed data; ingestion
// builds datasets with whatever columns the input actually carried.
func NewDataset(records []Record) Dataset {
	columns := []string{FieldCity, FieldYear}
	for _, c := range RawColumns() {
		columns = append(columns, string(c))
	}
	return Dataset{Columns: columns, Records: records}
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// HasColumn reports whether the input schema contained the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	columns := make([]string, len(d.Columns))
	copy(columns, d.Columns)

	records := make([]Record, len(d.Records))
	for i, r := range d.Records {
		records[i] = r.Clone()
	}

	return Dataset{Columns: columns, Records: records}
}

// ColumnValues returns all non-nil values of a column in record order.
func (d Dataset) ColumnValues(c Column) []float64 {
	values := make([]float64, 0, len(d.Records))
	for i := range d.Records {
		if v := d.Records[i].Value(c); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// Cities returns the distinct city names in first-seen order.
func (d Dataset) Cities() []string {
	seen := make(map[string]bool, len(d.Records))
	cities := make([]string, 0, len(d.Records))
	for i := range d.Records {
		city := d.Records[i].City
		if !seen[city] {
			seen[city] = true
			cities = append(cities, city)
		}
	}
	return cities
}
