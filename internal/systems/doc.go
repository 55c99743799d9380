// Package systems contains the game system registry and the helpers shared by
// game system implementations.
//
// Each game system (ColossalHunter, Kamigakari, Gorilla, OrgaRain) lives in a
// subpackage and is mostly data: a command grammar, outcome rules, a locale
// and the ids of the tables it rolls on. The engines in internal/core do the
// work.
//
// # Architecture
//
//   - Each system implements the GameSystem interface
//   - Systems are registered in a Registry at startup
//   - Dispatch offers a command to one system; a command the system does not
//     recognize is reported as not handled, never as an error
//
// # Adding a New System
//
//  1. Create a new subpackage (e.g., internal/systems/example/)
//  2. Add its tables under internal/content/tables/
//  3. Implement GameSystem, reusing Check and RollTable
//  4. Register it in internal/systems/builtin
package systems
