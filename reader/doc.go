// Package reader ingests course sections and rooms from Apache Parquet files
// and exports cached datasets back to Parquet.
//
// Column names are the namespaced dataset keys ("courses_avg",
// "rooms_seats", ...). Before decoding, a file's schema is checked against
// the record kind: every key must be present with a compatible type, except
// rooms_name (derived from shortname and number) and the optional
// rooms_lat and rooms_lon.
//
// # Basic Usage
//
// Reading a single parquet file:
//
//	r, err := reader.NewReader("courses.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	sections, err := r.ReadRecords(dataset.KindSection)
//
// Reading every file matching a glob:
//
//	rooms, err := reader.ReadDataset("buildings/*.parquet", dataset.KindRoom)
//
// Records are normalized on the way in: an "overall" section is dated to
// 1900 and a room's name is recomputed.
package reader
