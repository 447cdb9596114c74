package dataset

// OverallYear is the year assigned to a section summarizing all offerings.
const OverallYear = 1900

const overallSection = "overall"

// Record is a single course section or room.
//
// Records are held by pointer so that set operations over query results can
// use identity; two sections with equal fields are still distinct records.
type Record interface {
	// Kind returns the record kind.
	Kind() Kind
	// Value returns the field addressed by key as a string, a float64, or nil
	// when a numeric field is absent. ok is false when the key does not
	// belong to the record's kind.
	Value(key Key) (value interface{}, ok bool)
}

// Section is a single offering of a course.
type Section struct {
	Dept       string  `json:"courses_dept" parquet:"courses_dept"`
	ID         string  `json:"courses_id" parquet:"courses_id"`
	Title      string  `json:"courses_title" parquet:"courses_title"`
	Instructor string  `json:"courses_instructor" parquet:"courses_instructor"`
	Avg        float64 `json:"courses_avg" parquet:"courses_avg"`
	Pass       int64   `json:"courses_pass" parquet:"courses_pass"`
	Fail       int64   `json:"courses_fail" parquet:"courses_fail"`
	Audit      int64   `json:"courses_audit" parquet:"courses_audit"`
	UUID       string  `json:"courses_uuid" parquet:"courses_uuid"`
	Year       int64   `json:"courses_year" parquet:"courses_year"`
	Section    string  `json:"courses_section" parquet:"courses_section"`
}

// Normalize applies the ingestion rules for sections: the "overall" section
// of a course is dated to OverallYear.
func (s *Section) Normalize() {
	if s.Section == overallSection {
		s.Year = OverallYear
	}
}

// Kind implements Record.
func (s *Section) Kind() Kind { return KindSection }

// Value implements Record.
func (s *Section) Value(key Key) (interface{}, bool) {
	switch key {
	case SectionDept:
		return s.Dept, true
	case SectionID:
		return s.ID, true
	case SectionTitle:
		return s.Title, true
	case SectionInstructor:
		return s.Instructor, true
	case SectionAvg:
		return s.Avg, true
	case SectionPass:
		return float64(s.Pass), true
	case SectionFail:
		return float64(s.Fail), true
	case SectionAudit:
		return float64(s.Audit), true
	case SectionUUID:
		return s.UUID, true
	case SectionYear:
		return float64(s.Year), true
	case SectionSection:
		return s.Section, true
	default:
		return nil, false
	}
}

// Room is a bookable room inside a campus building.
//
// Lat and Lon are nil when the building address could not be geocoded.
type Room struct {
	Fullname  string   `json:"rooms_fullname" parquet:"rooms_fullname"`
	Shortname string   `json:"rooms_shortname" parquet:"rooms_shortname"`
	Number    string   `json:"rooms_number" parquet:"rooms_number"`
	Name      string   `json:"rooms_name" parquet:"rooms_name"`
	Address   string   `json:"rooms_address" parquet:"rooms_address"`
	Lat       *float64 `json:"rooms_lat,omitempty" parquet:"rooms_lat,optional"`
	Lon       *float64 `json:"rooms_lon,omitempty" parquet:"rooms_lon,optional"`
	Seats     int64    `json:"rooms_seats" parquet:"rooms_seats"`
	Type      string   `json:"rooms_type" parquet:"rooms_type"`
	Furniture string   `json:"rooms_furniture" parquet:"rooms_furniture"`
	Href      string   `json:"rooms_href" parquet:"rooms_href"`
}

// NewRoom builds a room and derives its name from shortname and number.
func NewRoom(fullname, shortname, number, address string, seats int64, roomType, furniture, href string) *Room {
	r := &Room{
		Fullname:  fullname,
		Shortname: shortname,
		Number:    number,
		Address:   address,
		Seats:     seats,
		Type:      roomType,
		Furniture: furniture,
		Href:      href,
	}
	r.Normalize()
	return r
}

// Normalize recomputes the derived name field.
func (r *Room) Normalize() {
	r.Name = r.Shortname + "_" + r.Number
}

// SetLocation records the geocoded coordinates of the room's building.
func (r *Room) SetLocation(lat, lon float64) {
	r.Lat = &lat
	r.Lon = &lon
}

// Kind implements Record.
func (r *Room) Kind() Kind { return KindRoom }

// Value implements Record.
func (r *Room) Value(key Key) (interface{}, bool) {
	switch key {
	case RoomFullname:
		return r.Fullname, true
	case RoomShortname:
		return r.Shortname, true
	case RoomNumber:
		return r.Number, true
	case RoomName:
		return r.Name, true
	case RoomAddress:
		return r.Address, true
	case RoomLat:
		return optionalFloat(r.Lat), true
	case RoomLon:
		return optionalFloat(r.Lon), true
	case RoomSeats:
		return float64(r.Seats), true
	case RoomType:
		return r.Type, true
	case RoomFurniture:
		return r.Furniture, true
	case RoomHref:
		return r.Href, true
	default:
		return nil, false
	}
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// ToRow converts a record into a row keyed by external key names.
func ToRow(rec Record) map[string]interface{} {
	keys := KeysOf(rec.Kind())
	row := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		v, _ := rec.Value(k)
		row[k.String()] = v
	}
	return row
}
