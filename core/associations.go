package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

const (
	AssocIndividual = "I"
	AssocFamily     = "F"
)

type AssociationInput struct {
	PersonID      string `json:"person_id"`
	PassocID      string `json:"passoc_id"`
	Relationship  string `json:"relationship"`
	RelType       string `json:"reltype"`
	CreateReverse bool   `json:"create_reverse"`
}

// AssociationView afegeix el nom visible de la persona o família associada.
type AssociationView struct {
	db.Association
	DisplayName string `json:"display_name"`
}

// ValidateAssociation comprova els camps obligatoris, el tipus i que el subjecte existeixi.
func (a *App) ValidateAssociation(tree string, in AssociationInput) []string {
	var errs []string
	if strings.TrimSpace(in.PersonID) == "" {
		errs = append(errs, "cal person_id")
	}
	if strings.TrimSpace(in.PassocID) == "" {
		errs = append(errs, "cal passoc_id")
	}
	if strings.TrimSpace(in.Relationship) == "" {
		errs = append(errs, "cal relationship")
	}
	if in.RelType != AssocIndividual && in.RelType != AssocFamily {
		errs = append(errs, fmt.Sprintf("reltype invàlid: %q (I|F)", in.RelType))
	}
	if id := strings.TrimSpace(in.PersonID); id != "" {
		if _, err := a.GetPerson(tree, id); err != nil {
			errs = append(errs, fmt.Sprintf("persona %s no existeix", id))
		}
	}
	return errs
}

// AddAssociation crea l'associació i, si es demana i és entre persones, la
// inversa. Totes dues files s'escriuen juntes però després són independents.
func (a *App) AddAssociation(actor Actor, tree string, in AssociationInput) (int, error) {
	if !actor.CanWrite() {
		return 0, ErrForbidden
	}
	in.PersonID = strings.TrimSpace(in.PersonID)
	in.PassocID = strings.TrimSpace(in.PassocID)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.RelType = strings.ToUpper(strings.TrimSpace(in.RelType))
	if errs := a.ValidateAssociation(tree, in); len(errs) > 0 {
		return 0, &ValidationError{Errors: errs}
	}
	primary := &db.Association{Gedcom: tree, PersonID: in.PersonID, PassocID: in.PassocID,
		Relationship: in.Relationship, RelType: in.RelType}
	var reverse *db.Association
	if in.CreateReverse && in.RelType == AssocIndividual {
		reverse = &db.Association{Gedcom: tree, PersonID: in.PassocID, PassocID: in.PersonID,
			Relationship: in.Relationship, RelType: AssocIndividual}
	}
	id, err := a.DB.CreateAssociation(primary, reverse)
	if err != nil {
		return 0, storageErr("creant associació", "associació", in.PersonID, err)
	}
	return id, nil
}

func (a *App) GetAssociation(id int) (*db.Association, error) {
	as, err := a.DB.GetAssociation(id)
	if err != nil {
		return nil, storageErr("llegint associació", "associació", strconv.Itoa(id), err)
	}
	return as, nil
}

// AssociationsForPerson retorna les associacions del subjecte, per relació.
func (a *App) AssociationsForPerson(actor Actor, tree, personID string) ([]AssociationView, error) {
	list, err := a.DB.ListAssociations(tree, personID)
	if err != nil {
		return nil, storageErr("llistant associacions", "persona", personID, err)
	}
	res := make([]AssociationView, 0, len(list))
	for _, as := range list {
		name, err := a.AssociationDisplayName(actor, tree, as.PassocID, as.RelType)
		if err != nil {
			return nil, err
		}
		res = append(res, AssociationView{Association: as, DisplayName: name})
	}
	return res, nil
}

// DeleteAssociation esborra l'associació id de l'arbre; d'un altre arbre és NotFound.
func (a *App) DeleteAssociation(actor Actor, tree string, id int) error {
	if !actor.CanWrite() {
		return ErrForbidden
	}
	ok, err := a.DB.DeleteAssociation(tree, id)
	if err != nil {
		return storageErr("esborrant associació", "associació", strconv.Itoa(id), err)
	}
	if !ok {
		return &NotFoundError{Kind: "associació", ID: strconv.Itoa(id)}
	}
	return nil
}

// AssociationDisplayName resol l'ID associat al nom d'una persona o a
// "Family of X and Y". Si no existeix retorna l'ID tal qual.
func (a *App) AssociationDisplayName(actor Actor, tree, id, relType string) (string, error) {
	if relType != AssocFamily {
		p, err := a.GetPerson(tree, id)
		if isNotFound(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		return PersonLabel(p, actor), nil
	}
	f, err := a.GetFamily(tree, id)
	if isNotFound(err) {
		return id, nil
	}
	if err != nil {
		return "", err
	}
	husband, err := a.spouseLabel(actor, tree, f.Husband)
	if err != nil {
		return "", err
	}
	wife, err := a.spouseLabel(actor, tree, f.Wife)
	if err != nil {
		return "", err
	}
	switch {
	case husband != "" && wife != "":
		return fmt.Sprintf("Family of %s and %s", husband, wife), nil
	case husband != "":
		return "Family of " + husband, nil
	case wife != "":
		return "Family of " + wife, nil
	}
	return "Family " + f.FamilyID, nil
}
