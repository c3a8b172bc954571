package grid

// The canonical pricing table. Every seed cell is locked: edits, clears and
// pastes must leave these rows byte-identical.

var headerStyle = &CellStyle{Bold: true, Background: "#e0e0e0"}
var headerRight = &CellStyle{Bold: true, Background: "#e0e0e0", Align: "right"}
var alignRight = &CellStyle{Align: "right"}

var seedData = Data{
	"A1": {Value: "Website Type", Style: headerStyle, Locked: true},
	"B1": {Value: "Min Price", Style: headerRight, Locked: true},
	"C1": {Value: "Max Price", Style: headerRight, Locked: true},

	"A2": {Value: "Small Personal / Info Website", Locked: true},
	"B2": {Value: "55000", Style: alignRight, Locked: true},
	"C2": {Value: "130000", Style: alignRight, Locked: true},

	"A3": {Value: "Clean Modern Website (Design Only)", Locked: true},
	"B3": {Value: "100000", Style: alignRight, Locked: true},
	"C3": {Value: "280000", Style: alignRight, Locked: true},

	"A4": {Value: "Business Website (Contact, Forms, Admin)", Locked: true},
	"B4": {Value: "180000", Style: alignRight, Locked: true},
	"C4": {Value: "580000", Style: alignRight, Locked: true},

	"A5": {Value: "Custom Website with Login & Features", Locked: true},
	"B5": {Value: "280000", Style: alignRight, Locked: true},
	"C5": {Value: "1480000", Style: alignRight, Locked: true},

	"A6": {Value: "Online Store (Sell Products)", Locked: true},
	"B6": {Value: "280000", Style: alignRight, Locked: true},
	"C6": {Value: "730000", Style: alignRight, Locked: true},

	"A7": {Value: "Booking Website (Appointments / Rentals)", Locked: true},
	"B7": {Value: "280000", Style: alignRight, Locked: true},
	"C7": {Value: "680000", Style: alignRight, Locked: true},

	"A8": {Value: "Admin Dashboard / Staff System", Locked: true},
	"B8": {Value: "230000", Style: alignRight, Locked: true},
	"C8": {Value: "580000", Style: alignRight, Locked: true},

	"A9": {Value: "Delivery / Dispatch Website (Tracking)", Locked: true},
	"B9": {Value: "380000", Style: alignRight, Locked: true},
	"C9": {Value: "1180000", Style: alignRight, Locked: true},
}

// Column A is wide for the long service names.
var defaultWidths = map[string]int{
	"A": 320,
	"B": 120,
	"C": 120,
	"D": 100,
	"E": 100,
	"F": 100,
	"G": 100,
}
