package auth

// Permission codes gating the application's functional areas. The catalog
// lives in the permissions table; these constants exist so route wiring and
// tests do not scatter string literals.
const (
	PermCommandesRead     = "COMMANDES_READ"
	PermCommandesWrite    = "COMMANDES_WRITE"
	PermArticlesRead      = "ARTICLES_READ"
	PermArticlesWrite     = "ARTICLES_WRITE"
	PermPlanningRead      = "PLANNING_READ"
	PermPlanningWrite     = "PLANNING_WRITE"
	PermPersonnelRead     = "PERSONNEL_READ"
	PermPersonnelWrite    = "PERSONNEL_WRITE"
	PermMaintenanceRead   = "MAINTENANCE_READ"
	PermMaintenanceWrite  = "MAINTENANCE_WRITE"
	PermQualiteRead       = "QUALITE_READ"
	PermQualiteWrite      = "QUALITE_WRITE"
	PermUtilisateursRead  = "UTILISATEURS_READ"
	PermUtilisateursWrite = "UTILISATEURS_WRITE"
)

// BuiltinPermissions seeds the catalog.
var BuiltinPermissions = []Permission{
	{Code: PermCommandesRead, Description: "Consulter les commandes de production"},
	{Code: PermCommandesWrite, Description: "Créer et modifier les commandes de production"},
	{Code: PermArticlesRead, Description: "Consulter les articles"},
	{Code: PermArticlesWrite, Description: "Créer et modifier les articles"},
	{Code: PermPlanningRead, Description: "Consulter le planning hebdomadaire"},
	{Code: PermPlanningWrite, Description: "Modifier le planning hebdomadaire"},
	{Code: PermPersonnelRead, Description: "Consulter le personnel"},
	{Code: PermPersonnelWrite, Description: "Gérer le personnel"},
	{Code: PermMaintenanceRead, Description: "Consulter la maintenance machines"},
	{Code: PermMaintenanceWrite, Description: "Gérer la maintenance machines"},
	{Code: PermQualiteRead, Description: "Consulter les défauts qualité"},
	{Code: PermQualiteWrite, Description: "Gérer les défauts qualité"},
	{Code: PermUtilisateursRead, Description: "Consulter les comptes utilisateurs"},
	{Code: PermUtilisateursWrite, Description: "Gérer les comptes, rôles et sessions"},
}
