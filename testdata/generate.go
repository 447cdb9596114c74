//go:build ignore

// Generates sample parquet datasets for manual testing:
//
//	go run testdata/generate.go
//	insightql -add courses=testdata/sections.parquet
//	insightql -add rooms=testdata/rooms.parquet
package main

import (
	"log"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/reader"
)

func main() {
	sections := []dataset.Record{
		&dataset.Section{Dept: "cpsc", ID: "310", Title: "intro sw eng", Instructor: "smith, jane", Avg: 78.25, Pass: 120, Fail: 4, UUID: "25945", Year: 2015, Section: "101"},
		&dataset.Section{Dept: "cpsc", ID: "310", Title: "intro sw eng", Instructor: "holmes, reid", Avg: 81.6, Pass: 98, Fail: 2, UUID: "25946", Year: 2016, Section: "102"},
		&dataset.Section{Dept: "cpsc", ID: "310", Title: "intro sw eng", Instructor: "", Avg: 79.9, Pass: 218, Fail: 6, UUID: "25947", Year: 2015, Section: "overall"},
		&dataset.Section{Dept: "math", ID: "100", Title: "diff calculus", Instructor: "lee, ann", Avg: 68.4, Pass: 300, Fail: 41, UUID: "31001", Year: 2014, Section: "201"},
		&dataset.Section{Dept: "math", ID: "200", Title: "calculus iii", Instructor: "park, min", Avg: 72.15, Pass: 150, Fail: 12, Audit: 1, UUID: "31002", Year: 2016, Section: "101"},
		&dataset.Section{Dept: "adhe", ID: "329", Title: "dev wkshp", Instructor: "bishundayal, deonarine", Avg: 96.11, Pass: 27, Fail: 0, UUID: "44817", Year: 2012, Section: "076"},
	}

	var rooms []dataset.Record
	for _, r := range []struct {
		full, short, number, address string
		seats                        int64
		kind, furniture              string
		lat, lon                     float64
	}{
		{"Hugh Dempster Pavilion", "DMP", "110", "6245 Agronomy Road V6T 1Z4", 120, "Tiered Large Group", "Classroom-Fixed Tables/Movable Chairs", 49.26125, -123.24807},
		{"Hugh Dempster Pavilion", "DMP", "201", "6245 Agronomy Road V6T 1Z4", 40, "Small Group", "Classroom-Movable Tables & Chairs", 49.26125, -123.24807},
		{"Woodward (Instructional Resources Centre-IRC)", "WOOD", "2", "2194 Health Sciences Mall", 503, "Tiered Large Group", "Classroom-Fixed Tablets", 49.26478, -123.24673},
		{"Orchard Commons", "ORCH", "3004", "6363 Agronomy Road", 32, "Small Group", "Classroom-Movable Tables & Chairs", 49.26048, -123.24944},
	} {
		room := dataset.NewRoom(r.full, r.short, r.number, r.address, r.seats, r.kind, r.furniture,
			"http://students.ubc.ca/campus/discover/buildings-and-classrooms/room/"+r.short+"-"+r.number)
		room.SetLocation(r.lat, r.lon)
		rooms = append(rooms, room)
	}

	if err := reader.WriteDataset("testdata/sections.parquet", dataset.KindSection, sections); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated testdata/sections.parquet with %d sections", len(sections))

	if err := reader.WriteDataset("testdata/rooms.parquet", dataset.KindRoom, rooms); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated testdata/rooms.parquet with %d rooms", len(rooms))
}
